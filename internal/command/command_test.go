package command

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// helperRequest builds a request that re-runs the test binary as a fake tool
func helperRequest(mode string, timeout time.Duration) Request {
	return Request{
		Name:    os.Args[0],
		Args:    []string{"-test.run=TestHelperProcess", "--", mode},
		Env:     []string{"GO_WANT_HELPER_PROCESS=1"},
		Timeout: timeout,
	}
}

// TestHelperProcess is not a real test, it's used as the external process
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	args := os.Args
	for len(args) > 0 && args[0] != "--" {
		args = args[1:]
	}
	if len(args) < 2 {
		os.Exit(2)
	}

	switch args[1] {
	case "ok":
		fmt.Fprint(os.Stdout, "all cells executed")
		os.Exit(0)
	case "fail":
		fmt.Fprint(os.Stderr, "KeyError: 'TAVG'")
		os.Exit(3)
	case "noisy":
		fmt.Fprint(os.Stderr, strings.Repeat("x", 10000)+"END")
		os.Exit(1)
	case "sleep":
		time.Sleep(30 * time.Second)
		os.Exit(0)
	}
	os.Exit(2)
}

func TestExecExecutor_Success(t *testing.T) {
	res, err := NewExecExecutor().Run(context.Background(), helperRequest("ok", 10*time.Second))
	require.NoError(t, err)

	assert.True(t, res.Success())
	assert.Equal(t, 0, res.ExitCode)
	assert.Contains(t, res.Stdout, "all cells executed")
	assert.False(t, res.TimedOut)
	assert.Greater(t, res.Elapsed, time.Duration(0))
}

func TestExecExecutor_NonZeroExit(t *testing.T) {
	res, err := NewExecExecutor().Run(context.Background(), helperRequest("fail", 10*time.Second))
	require.NoError(t, err)

	assert.False(t, res.Success())
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "KeyError: 'TAVG'", res.Stderr)
	assert.False(t, res.TimedOut)
	assert.NoError(t, res.StartErr)
}

func TestExecExecutor_StderrIsBounded(t *testing.T) {
	req := helperRequest("noisy", 10*time.Second)
	req.TailBytes = 100

	res, err := NewExecExecutor().Run(context.Background(), req)
	require.NoError(t, err)

	assert.Len(t, res.Stderr, 100)
	assert.True(t, strings.HasSuffix(res.Stderr, "END"))
	assert.Equal(t, int64(10003-100), res.StderrTruncated)
}

func TestExecExecutor_Timeout(t *testing.T) {
	res, err := NewExecExecutor().Run(context.Background(), helperRequest("sleep", 200*time.Millisecond))
	require.NoError(t, err)

	assert.True(t, res.TimedOut)
	assert.False(t, res.Success())
}

func TestExecExecutor_ParentCancelIsNotTimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(200 * time.Millisecond)
		cancel()
	}()

	res, err := NewExecExecutor().Run(ctx, helperRequest("sleep", time.Minute))
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, res.TimedOut)
}

func TestExecExecutor_MissingBinary(t *testing.T) {
	res, err := NewExecExecutor().Run(context.Background(), Request{Name: "definitely-not-a-real-tool-xyz"})
	require.NoError(t, err)

	assert.Error(t, res.StartErr)
	assert.False(t, res.Success())
}

func TestExecExecutor_EmptyName(t *testing.T) {
	_, err := NewExecExecutor().Run(context.Background(), Request{})
	assert.Error(t, err)
}

func TestTailBuffer(t *testing.T) {
	tests := []struct {
		name        string
		max         int
		writes      []string
		want        string
		wantDropped int64
	}{
		{name: "fits", max: 10, writes: []string{"abc", "def"}, want: "abcdef"},
		{name: "overflow across writes", max: 5, writes: []string{"abc", "defg"}, want: "cdefg", wantDropped: 2},
		{name: "single large write", max: 4, writes: []string{"ab", "0123456789"}, want: "6789", wantDropped: 8},
		{name: "exact fit", max: 3, writes: []string{"abc"}, want: "abc"},
		{name: "cut inside a rune", max: 4, writes: []string{"ab", "xé€"}, want: "€", wantDropped: 5},
		{name: "cut inside a rune across writes", max: 4, writes: []string{"€", "€"}, want: "€", wantDropped: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewTailBuffer(tt.max)
			for _, w := range tt.writes {
				n, err := b.Write([]byte(w))
				require.NoError(t, err)
				assert.Equal(t, len(w), n)
			}
			assert.Equal(t, tt.want, b.String())
			assert.Equal(t, tt.wantDropped, b.Dropped())
		})
	}
}
