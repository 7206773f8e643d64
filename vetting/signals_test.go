package vetting

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountThirdPartyOrigins(t *testing.T) {
	scripts := []string{
		"/static/app.js",
		"https://shop.test/vendor.js",
		"https://cdn.example.net/a.js",
		"https://cdn.example.net/b.js",
		"//ads.tracker.io/t.js",
		"http://shop.test/insecure.js",
		"",
	}

	assert.Equal(t, 3, countThirdPartyOrigins("https://shop.test/", scripts))
}

func TestCountThirdPartyOriginsDefaultPorts(t *testing.T) {
	scripts := []string{
		"https://shop.test:443/app.js",
		"https://SHOP.test/b.js",
		"https://shop.test:8443/admin.js",
	}
	assert.Equal(t, 1, countThirdPartyOrigins("https://shop.test/", scripts))

	assert.Equal(t, 0, countThirdPartyOrigins("http://shop.test:80/", []string{"http://shop.test/app.js"}))
	assert.Equal(t, 1, countThirdPartyOrigins("http://shop.test/", []string{"http://shop.test:443/app.js"}))
}

func TestLoginIndicator(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   bool
	}{
		{"password input", `<form><input name="p" TYPE="Password"></form>`, true},
		{"login wording", `<a href="/account">Login</a>`, true},
		{"sign in wording", `<button>Sign In</button>`, true},
		{"plain page", `<p>Welcome to our bakery</p>`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hasLoginIndicator(tt.markup))
		})
	}
}

func TestExtractSignals(t *testing.T) {
	var scripts []string
	for i := 0; i < 7; i++ {
		scripts = append(scripts, fmt.Sprintf("https://cdn%d.test/x.js", i))
	}
	link := "https://a.test/privacy"

	got := ExtractSignals(&CaptureEnvelope{
		FinalURL: "https://a.test/",
		HTML:     "<html><head><title>  Acme\n Store </title></head><body></body></html>",
		Scripts:  scripts,
	}, PrivacyPolicy{Link: &link})

	assert.Equal(t, PageSignals{
		Title:                  "Acme Store",
		SSL:                    true,
		HasPrivacyLink:         true,
		HasLoginForm:           false,
		ThirdPartyScriptsCount: 7,
	}, got)
}
