package progress

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracker_Disabled(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, false)

	p.Start(3)
	p.Step(0, "https://cafe.daum.net/a")
	p.Finish(false)
	p.Stop()

	assert.False(t, p.Enabled())
	assert.Empty(t, buf.String())
}

func TestTracker_Suffix(t *testing.T) {
	p := New(&bytes.Buffer{}, false)
	p.Start(5)
	assert.Equal(t, " [0/5]", p.suffix())

	p.Step(1, "https://cafe.daum.net/WHCRP/VmtR/2")
	assert.Equal(t, " [2/5] https://cafe.daum.net/WHCRP/VmtR/2", p.suffix())

	p.Finish(true)
	p.Step(2, "https://cafe.daum.net/WHCRP/VmtR/3")
	p.Finish(false)
	assert.Equal(t, " [3/5] https://cafe.daum.net/WHCRP/VmtR/3 (1 failed)", p.suffix())

	p.Start(2)
	assert.Equal(t, " [0/2]", p.suffix(), "Start resets the counters")
}

func TestTracker_EnabledUpdatesSpinnerText(t *testing.T) {
	p := New(&bytes.Buffer{}, true)
	assert.True(t, p.Enabled())

	p.Start(2)
	defer p.Stop()
	p.Step(0, "https://cafe.daum.net/a")

	p.spinner.Lock()
	suffix := p.spinner.Suffix
	p.spinner.Unlock()
	assert.Equal(t, " [1/2] https://cafe.daum.net/a", suffix)
}

func TestShortURL(t *testing.T) {
	short := "https://cafe.daum.net/WHCRP/VmtR/1"
	assert.Equal(t, short, shortURL(short))

	long := "https://cafe.daum.net/_c21_/bbs_read?grpid=1abc&fldid=VmtR&datanum=123456&svc=cafeapi&q=" + strings.Repeat("x", 40)
	got := shortURL(long)
	assert.LessOrEqual(t, len(got), maxURLWidth)
	assert.True(t, strings.HasPrefix(got, "cafe.daum.net..."))
	assert.True(t, strings.HasSuffix(got, "xxxx"))
}
