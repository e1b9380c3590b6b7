package html

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	previewPolicyOnce sync.Once
	previewPolicy     *bluemonday.Policy
)

// previewSanitizer allows exactly the markup the preview template emits.
// Avatar sources are data URIs; the background may be a relative asset path.
func previewSanitizer() *bluemonday.Policy {
	previewPolicyOnce.Do(func() {
		policy := bluemonday.NewPolicy()
		policy.AllowElements("section", "div", "h1", "p", "span")
		policy.AllowAttrs("class").Globally()
		policy.AllowDataAttributes()

		policy.AllowImages()
		policy.AllowDataURIImages()
		policy.AllowRelativeURLs(true)
		policy.AllowURLSchemes("http", "https")
		policy.AllowAttrs("class").OnElements("img")

		previewPolicy = policy
	})
	return previewPolicy
}
