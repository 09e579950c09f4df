package redis

import "fmt"

const ns = "boxoffice:v1"

func KeyEventView(code int64) string {
	return fmt.Sprintf("%s:event:%d:view", ns, code)
}

func KeyEventTickets(code int64) string {
	return fmt.Sprintf("%s:event:%d:tickets", ns, code)
}

func KeyEventList() string {
	return ns + ":events"
}

func KeyRateLimit(scope string) string {
	return fmt.Sprintf("%s:rl:%s", ns, scope)
}

func ChannelStoreChanged() string {
	return ns + ":store:changed"
}
