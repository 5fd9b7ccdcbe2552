package clicks

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", "0.0.0.0"},
		{"203.0.113.7", "203.0.113.7"},
		{"203.0.113.7, 10.0.0.1, 10.0.0.2", "203.0.113.7"},
		{"  198.51.100.1 ,10.0.0.1", "198.51.100.1"},
		{" , 10.0.0.1", "0.0.0.0"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClientIP(tt.header), "header %q", tt.header)
	}
}

func TestIPHasher(t *testing.T) {
	plain := NewIPHasher("")
	// sha256("0.0.0.0")
	assert.Equal(t, "19e36255972107d42b8cecb77ef5622e842e8a50778a6ed8dd1ce94732daca9e", plain.Hash("0.0.0.0"))

	a := plain.Hash("203.0.113.7")
	assert.Len(t, a, 64)
	assert.Equal(t, a, plain.Hash("203.0.113.7"))
	assert.NotEqual(t, a, plain.Hash("203.0.113.8"))
	assert.NotContains(t, a, "203.0.113.7")

	salted := NewIPHasher("pepper")
	s := salted.Hash("203.0.113.7")
	assert.Len(t, s, 64)
	assert.NotEqual(t, a, s)
	assert.Equal(t, s, NewIPHasher("pepper").Hash("203.0.113.7"))
	assert.NotEqual(t, s, NewIPHasher("other").Hash("203.0.113.7"))
}

func TestIsBot(t *testing.T) {
	bots := []string{
		"Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
		"bingbot",
		"AhrefsBot/7.0",
		"Screaming Frog SEO Spider Crawler",
		"my-crawler/1.0",
	}
	for _, ua := range bots {
		assert.True(t, IsBot(ua), ua)
	}

	humans := []string{
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_0) AppleWebKit/605.1.15 Safari/605.1.15",
		"curl/8.4.0",
		"Unknown",
	}
	for _, ua := range humans {
		assert.False(t, IsBot(ua), ua)
	}
}

func TestNormalizeUserAgent(t *testing.T) {
	assert.Equal(t, "Unknown", normalizeUserAgent(""))
	assert.Equal(t, "Unknown", normalizeUserAgent("   "))
	assert.Equal(t, "curl/8.4.0", normalizeUserAgent("curl/8.4.0"))
}
