// CLAUDE:SUMMARY Blocks configured resource types (images, fonts, media) on capture tabs; stylesheets always load.
package browser

import (
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// applyResourceBlocking fails requests whose resource type is blocked.
func applyResourceBlocking(page *rod.Page, types []string) error {
	blocked := blockSet(types)
	if len(blocked) == 0 {
		return nil
	}

	router := page.HijackRequests()
	if err := router.Add("*", "", func(ctx *rod.Hijack) {
		if blocked[resourceKind(string(ctx.Request.Type()))] {
			ctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		ctx.ContinueRequest(&proto.FetchContinueRequest{})
	}); err != nil {
		return err
	}
	go router.Run()
	return nil
}

// blockSet normalises config names. Stylesheets are dropped: computed
// styles are the whole point of a capture.
func blockSet(types []string) map[string]bool {
	set := make(map[string]bool, len(types))
	for _, t := range types {
		k := resourceKind(t)
		if k == "" || k == "stylesheet" {
			continue
		}
		set[k] = true
	}
	return set
}

// resourceKind maps CDP resource types and plural config names to one key.
func resourceKind(s string) string {
	switch k := strings.ToLower(strings.TrimSpace(s)); k {
	case "image", "images":
		return "image"
	case "font", "fonts":
		return "font"
	case "media":
		return "media"
	case "stylesheet", "stylesheets":
		return "stylesheet"
	default:
		return k
	}
}
