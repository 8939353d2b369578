package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// listingScope decides who may reuse a product response.
type listingScope struct {
	cacheControl string
	// owner is mixed into the ETag so two sellers never share a validator
	owner string
}

var publicListing = listingScope{cacheControl: "public, no-cache"}

func sellerListing(ownerID string) listingScope {
	return listingScope{cacheControl: "private, no-cache", owner: ownerID}
}

// respondProducts writes payload as JSON with an ETag over the encoded body.
// A request whose If-None-Match already holds that ETag gets 304 and no body.
func respondProducts(ctx *gin.Context, scope listingScope, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		ctx.JSON(http.StatusOK, payload)
		return
	}

	etag := productsETag(scope.owner, body)

	ctx.Header("ETag", etag)
	ctx.Header("Cache-Control", scope.cacheControl)
	if scope.owner != "" {
		ctx.Header("Vary", "Authorization")
	}

	if etagListed(ctx.GetHeader("If-None-Match"), etag) {
		ctx.Status(http.StatusNotModified)
		return
	}

	ctx.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func productsETag(owner string, body []byte) string {
	h := sha256.New()
	if owner != "" {
		h.Write([]byte(owner))
		h.Write([]byte{0})
	}
	h.Write(body)

	return `"` + hex.EncodeToString(h.Sum(nil)[:16]) + `"`
}

// etagListed reports whether the If-None-Match header names etag. Weak
// validators (W/"...") match their strong form.
func etagListed(header, etag string) bool {
	header = strings.TrimSpace(header)
	if header == "" {
		return false
	}
	if header == "*" {
		return true
	}

	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == etag {
			return true
		}
	}
	return false
}
