// Package provider binds the application to Firebase: Firestore for the
// roster, users and shared picklists, Firebase Auth for ID tokens and Cloud
// Messaging for pushes.
package provider

import (
	"fmt"
	"strconv"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Firestore collection and document paths.
const (
	PlayersCollection = "players"
	UsersCollection   = "users"
	SystemListsDoc    = "settings/system_lists"
)

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// str coerces a loosely typed document field to text. Dates stored as
// timestamps become ISO dates so the alert rules can parse them.
func str(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case time.Time:
		return t.Format("2006-01-02")
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

func num(v interface{}) float64 {
	switch t := v.(type) {
	case int64:
		return float64(t)
	case float64:
		return t
	case string:
		f, _ := strconv.ParseFloat(t, 64)
		return f
	default:
		return 0
	}
}

func millis(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case float64:
		return int64(t)
	case time.Time:
		return t.UnixMilli()
	default:
		return 0
	}
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, _ := strconv.ParseBool(t)
		return b
	default:
		return false
	}
}

func submap(m map[string]interface{}, key string) (map[string]interface{}, bool) {
	sub, ok := m[key].(map[string]interface{})
	return sub, ok
}

func stringList(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s := str(it); s != "" {
			out = append(out, s)
		}
	}
	return out
}
