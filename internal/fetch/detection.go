package fetch

import (
	"net/http"
	"strings"
)

// Detector examines a fetch result to determine whether a bot protection
// mechanism blocked or challenged the request.
type Detector func(res *Result) (detected bool, source string)

// DefaultDetectors returns the standard list of bot protection detectors.
func DefaultDetectors() []Detector {
	return []Detector{
		detectCloudflare,
		detectAkamai,
		detectDataDome,
		detectPerimeterX,
		detectInterstitial,
	}
}

// DetectChallenge runs the result through the default detectors and returns
// the name of the first protection that triggered.
func DetectChallenge(res *Result) (bool, string) {
	return Analyze(res, DefaultDetectors())
}

// Analyze runs the result through the given detectors.
func Analyze(res *Result, detectors []Detector) (bool, string) {
	if res == nil {
		return false, ""
	}
	for _, d := range detectors {
		if detected, source := d(res); detected {
			return true, source
		}
	}
	return false, ""
}

func blocked(status int) bool {
	return status == http.StatusForbidden || status == http.StatusServiceUnavailable || status == http.StatusTooManyRequests
}

// detectCloudflare looks for Cloudflare challenge or block signatures.
// The "Just a moment..." interstitial is sometimes served with a 200.
func detectCloudflare(res *Result) (bool, string) {
	if strings.Contains(res.HTML, "<title>Just a moment...</title>") && strings.Contains(res.HTML, "cf-") {
		return true, "Cloudflare"
	}
	if !blocked(res.StatusCode) {
		return false, ""
	}
	if strings.Contains(strings.ToLower(res.Headers.Get("Server")), "cloudflare") || res.Headers.Get("Cf-Mitigated") != "" {
		return true, "Cloudflare"
	}
	for _, sig := range []string{"cf-browser-verification", "cloudflare-nginx", "cf-turnstile", "Attention Required! | Cloudflare"} {
		if strings.Contains(res.HTML, sig) {
			return true, "Cloudflare"
		}
	}
	return false, ""
}

// detectAkamai looks for Akamai Bot Manager signatures.
func detectAkamai(res *Result) (bool, string) {
	if res.StatusCode != http.StatusForbidden {
		return false, ""
	}
	if strings.Contains(strings.ToLower(res.Headers.Get("Server")), "akamai") {
		return true, "Akamai"
	}
	// Akamai often returns a generic "Reference #" block page
	if strings.Contains(res.HTML, "Reference #") && strings.Contains(res.HTML, "Access Denied") {
		return true, "Akamai"
	}
	return false, ""
}

// detectDataDome looks for DataDome challenge or block signatures.
func detectDataDome(res *Result) (bool, string) {
	if res.StatusCode != http.StatusForbidden {
		return false, ""
	}
	if strings.Contains(strings.ToLower(res.Headers.Get("Server")), "datadome") ||
		res.Headers.Get("X-DataDome") != "" || res.Headers.Get("X-DataDome-Response") != "" {
		return true, "DataDome"
	}
	if strings.Contains(res.HTML, "geo.captcha-delivery.com") || strings.Contains(res.HTML, "datadome") {
		return true, "DataDome"
	}
	return false, ""
}

// detectPerimeterX looks for PerimeterX (HUMAN) signatures.
func detectPerimeterX(res *Result) (bool, string) {
	if res.StatusCode != http.StatusForbidden {
		return false, ""
	}
	if res.Headers.Get("X-Px-Captcha") != "" {
		return true, "PerimeterX"
	}
	for _, sig := range []string{"client.perimeterx.net", "px-captcha", "_pxBlock"} {
		if strings.Contains(res.HTML, sig) {
			return true, "PerimeterX"
		}
	}
	return false, ""
}

// detectInterstitial catches small generic captcha or "enable JavaScript"
// pages that carry no article text.
func detectInterstitial(res *Result) (bool, string) {
	if len(res.HTML) > 20000 {
		return false, ""
	}
	lower := strings.ToLower(res.HTML)
	for _, sig := range []string{"g-recaptcha", "h-captcha", "verify you are human", "please enable javascript and cookies"} {
		if strings.Contains(lower, sig) {
			return true, "Interstitial"
		}
	}
	return false, ""
}
