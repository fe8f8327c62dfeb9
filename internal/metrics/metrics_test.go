package metrics

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	m := New()
	m.HTTPRequestsTotal = 3
	m.AddItem(1)
	m.AddItem(1)
	m.AddItem(2)
	m.AddItem(KindSlots) // 범위 밖: 전체 카운터만 증가

	out := m.String(func(k int) string { return "k" + strconv.Itoa(k) }, 2)

	assert.Contains(t, out, "http_requests_total=3\n")
	assert.Contains(t, out, "items_published_total=4\n")
	assert.Contains(t, out, `items_published_total{kind="k1"}=2`)
	assert.Contains(t, out, `items_published_total{kind="k2"}=1`)
	assert.NotContains(t, out, `kind="k0"`)
	assert.Contains(t, out, "stream_subscribers=2\n")
}
