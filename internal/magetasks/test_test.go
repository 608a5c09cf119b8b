package magetasks

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/subunit/pkg/render"
)

func TestSummarizeGoTest(t *testing.T) {
	events := strings.Join([]string{
		`{"Action":"run","Package":"example.com/pkg","Test":"TestA"}`,
		`{"Action":"pass","Package":"example.com/pkg","Test":"TestA","Elapsed":0.01}`,
		`{"Action":"run","Package":"example.com/pkg","Test":"TestB"}`,
		`{"Action":"output","Package":"example.com/pkg","Test":"TestB","Output":"    b_test.go:9: boom\n"}`,
		`{"Action":"fail","Package":"example.com/pkg","Test":"TestB","Elapsed":0.02}`,
		`{"Action":"fail","Package":"example.com/pkg","Elapsed":0.1}`,
	}, "\n") + "\n"

	var out bytes.Buffer
	stats, err := summarizeGoTest(context.Background(), strings.NewReader(events), &out, render.MonoTheme())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Failed)
	assert.False(t, stats.WasSuccessful())
	assert.Contains(t, out.String(), "x example.com/pkg.TestB")
	assert.Contains(t, out.String(), "b_test.go:9: boom")
	assert.Contains(t, out.String(), "FAIL")
}

func TestSummarizeGoTest_AllPass(t *testing.T) {
	events := `{"Action":"pass","Package":"example.com/pkg","Test":"TestA"}` + "\n"

	var out bytes.Buffer
	stats, err := summarizeGoTest(context.Background(), strings.NewReader(events), &out, render.MonoTheme())
	require.NoError(t, err)
	assert.True(t, stats.WasSuccessful())
	assert.NotContains(t, out.String(), "x ")
}
