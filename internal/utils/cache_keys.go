package utils

import "strings"

const catalogKeyVersion = "v1"

func BuildAvailableProductsCacheKey() string {
	return "products:available:" + catalogKeyVersion
}

func BuildSellerProductsCacheKey(ownerID string) string {
	return "products:seller:" + catalogKeyVersion + ":owner=" + strings.ToLower(strings.TrimSpace(ownerID))
}
