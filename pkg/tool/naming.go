package tool

import "strings"

// ProjectKeyFromTransactionID derives the human-readable tracker project key
// from a transaction/session identifier: "PRJ" + last 4 characters, upper-cased.
// Keys are pure functions of the id so they can be recomputed at any time.
func ProjectKeyFromTransactionID(transactionID string) string {
	return "PRJ" + strings.ToUpper(idSuffix(transactionID))
}

// ChannelNameFromTransactionID derives the chat channel name from the same
// identifier: "prj-" + last 4 characters, lower-cased.
func ChannelNameFromTransactionID(transactionID string) string {
	return "prj-" + strings.ToLower(idSuffix(transactionID))
}

func idSuffix(id string) string {
	if len(id) <= 4 {
		return id
	}
	return id[len(id)-4:]
}
