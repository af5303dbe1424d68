// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/court-harvest/pkg/types"
)

const caseURL = "https://search.txcourts.gov/Case.aspx?cn=01-23-00456-CV"

// casePage returns markup with n qualifying links whose MediaVersionIDs
// are 1..n.
func casePage(n int) string {
	var b strings.Builder
	b.WriteString("<html><body><table>")
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, `<tr><td><a href="SearchMedia.aspx?MediaVersionID=%d">Filing PDF/%d KB</a></td></tr>`, i, i*10)
	}
	b.WriteString("</table></body></html>")
	return b.String()
}

// fakeFetcher serves a fixed page and a payload per link ID.
type fakeFetcher struct {
	page    string
	pageErr error
	docErrs map[int]error
	fetched []int
	onFetch func(id int)
}

func (f *fakeFetcher) FetchPage(_ context.Context, url string) (string, error) {
	if f.pageErr != nil {
		return "", f.pageErr
	}
	return f.page, nil
}

func (f *fakeFetcher) FetchDocument(ctx context.Context, link types.LinkDescriptor) (*types.FetchedDocument, error) {
	f.fetched = append(f.fetched, link.ID)
	if f.onFetch != nil {
		f.onFetch(link.ID)
	}
	if err := ctx.Err(); err != nil {
		return nil, &types.DocumentFetchError{ID: link.ID, URL: link.URL, Err: err}
	}
	if err, ok := f.docErrs[link.ID]; ok {
		return nil, err
	}
	return &types.FetchedDocument{
		ID:        link.ID,
		SourceURL: link.URL,
		Data:      []byte(fmt.Sprintf("text of document %d", link.ID)),
	}, nil
}

// echoConverter returns the payload as text, or fails for payloads listed
// in bad.
type echoConverter struct {
	bad map[string]bool
}

func (c *echoConverter) Convert(_ context.Context, data []byte) (string, error) {
	if c.bad[string(data)] {
		return "", &types.ConversionError{Err: errors.New("no xref table")}
	}
	return string(data), nil
}

// recordingThrottle counts waits and never sleeps.
type recordingThrottle struct {
	delay time.Duration
	waits int
	dones int
}

func (r *recordingThrottle) Wait(ctx context.Context) error {
	r.waits++
	return ctx.Err()
}

func (r *recordingThrottle) Done() { r.dones++ }

func newTestPipeline(f Fetcher, c *echoConverter, th *recordingThrottle) *Pipeline {
	if c == nil {
		c = &echoConverter{}
	}
	return New(f, c, types.HarvestConfig{}, WithThrottle(func(d time.Duration) Throttle {
		th.delay = d
		return th
	}))
}

func TestRun_SeparateMode(t *testing.T) {
	f := &fakeFetcher{page: casePage(3)}
	th := &recordingThrottle{}

	res, err := newTestPipeline(f, nil, th).Run(context.Background(), caseURL, false)
	require.NoError(t, err)

	assert.Equal(t, types.ModeSeparate, res.Mode)
	assert.Equal(t, 3, res.TotalLinksFound)
	assert.Equal(t, 3, res.ProcessedCount)
	assert.Empty(t, res.Note)
	require.Len(t, res.Documents, 3)
	for i, d := range res.Documents {
		assert.Equal(t, i+1, d.ID)
		assert.Equal(t, fmt.Sprintf("document_%d_%dKB.txt", i+1, (i+1)*10), d.Filename)
		assert.Equal(t, fmt.Sprintf("text of document %d", i+1), d.Text)
	}
}

func TestRun_MergedMode(t *testing.T) {
	f := &fakeFetcher{page: casePage(2)}

	res, err := newTestPipeline(f, nil, &recordingThrottle{}).Run(context.Background(), caseURL, true)
	require.NoError(t, err)

	assert.Equal(t, types.ModeMerged, res.Mode)
	assert.Equal(t, "merged_court_documents.txt", res.Filename)
	assert.Equal(t,
		"<document id=1>\ntext of document 1\n</document>\n\n<document id=2>\ntext of document 2\n</document>",
		res.MergedContent)
	assert.Nil(t, res.Documents)
}

func TestRun_BatchCap(t *testing.T) {
	f := &fakeFetcher{page: casePage(8)}

	res, err := newTestPipeline(f, nil, &recordingThrottle{}).Run(context.Background(), caseURL, false)
	require.NoError(t, err)

	assert.Equal(t, 8, res.TotalLinksFound)
	assert.Equal(t, 5, res.ProcessedCount)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, f.fetched)
	assert.True(t, strings.HasPrefix(res.Note, "Processed 5 of 8 PDFs"), res.Note)
	assert.Contains(t, res.Note, "limit: 5 per request")
}

func TestRun_CustomCap(t *testing.T) {
	f := &fakeFetcher{page: casePage(4)}
	p := New(f, &echoConverter{}, types.HarvestConfig{MaxDocuments: 2}, WithThrottle(func(time.Duration) Throttle {
		return &recordingThrottle{}
	}))

	res, err := p.Run(context.Background(), caseURL, false)
	require.NoError(t, err)
	assert.Equal(t, 2, res.ProcessedCount)
	assert.Equal(t, "Processed 2 of 4 PDFs (limit: 2 per request).", res.Note)
}

func TestRun_FetchFailureIsIsolated(t *testing.T) {
	f := &fakeFetcher{
		page: casePage(4),
		docErrs: map[int]error{
			2: &types.DocumentFetchError{ID: 2, StatusCode: 500},
		},
	}

	res, err := newTestPipeline(f, nil, &recordingThrottle{}).Run(context.Background(), caseURL, false)
	require.NoError(t, err)

	assert.Equal(t, 4, res.TotalLinksFound)
	assert.Equal(t, 3, res.ProcessedCount)
	assert.Equal(t, []int{1, 2, 3, 4}, f.fetched, "batch continues after a failure")
	for _, d := range res.Documents {
		assert.NotEqual(t, 2, d.ID)
	}
	require.Len(t, res.Failures, 1)
	assert.Equal(t, 2, res.Failures[0].ID)
	assert.Equal(t, types.StageFetch, res.Failures[0].Stage)
	assert.Equal(t, "Processed 3 of 4 PDFs (1 failed).", res.Note)
}

func TestRun_ConversionFailureIsIsolated(t *testing.T) {
	f := &fakeFetcher{page: casePage(3)}
	c := &echoConverter{bad: map[string]bool{"text of document 1": true}}

	res, err := newTestPipeline(f, c, &recordingThrottle{}).Run(context.Background(), caseURL, true)
	require.NoError(t, err)

	assert.Equal(t, 2, res.ProcessedCount)
	assert.NotContains(t, res.MergedContent, "<document id=1>")
	assert.True(t, strings.HasPrefix(res.MergedContent, "<document id=2>"))
	require.Len(t, res.Failures, 1)
	assert.Equal(t, types.StageConvert, res.Failures[0].Stage)
	assert.Contains(t, res.Failures[0].Message, "document 1")
}

func TestRun_ThrottleBetweenFetches(t *testing.T) {
	f := &fakeFetcher{page: casePage(3)}
	th := &recordingThrottle{}

	_, err := newTestPipeline(f, nil, th).Run(context.Background(), caseURL, false)
	require.NoError(t, err)

	assert.Equal(t, types.DefaultFetchDelay, th.delay)
	assert.Equal(t, 3, th.waits)
	assert.Equal(t, 3, th.dones)
}

func TestRun_NoLinks(t *testing.T) {
	f := &fakeFetcher{page: "<html><body>No documents</body></html>"}
	th := &recordingThrottle{}

	res, err := newTestPipeline(f, nil, th).Run(context.Background(), caseURL, false)
	require.NoError(t, err)

	assert.Zero(t, res.TotalLinksFound)
	assert.Zero(t, res.ProcessedCount)
	assert.Empty(t, res.Documents)
	assert.Empty(t, res.Note)
	assert.Empty(t, f.fetched)
	assert.Zero(t, th.waits)
}

func TestRun_PageFetchError(t *testing.T) {
	f := &fakeFetcher{pageErr: &types.PageFetchError{URL: caseURL, StatusCode: 503}}

	_, err := newTestPipeline(f, nil, &recordingThrottle{}).Run(context.Background(), caseURL, false)
	var pfe *types.PageFetchError
	require.True(t, errors.As(err, &pfe))
	assert.Equal(t, 503, pfe.StatusCode)
}

func TestRun_PlainPageErrorIsWrapped(t *testing.T) {
	f := &fakeFetcher{pageErr: errors.New("connection reset")}

	_, err := newTestPipeline(f, nil, &recordingThrottle{}).Run(context.Background(), caseURL, false)
	var pfe *types.PageFetchError
	require.True(t, errors.As(err, &pfe))
	assert.Contains(t, err.Error(), "connection reset")
}

func TestRun_InputErrors(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"empty", ""},
		{"blank", "   "},
		{"no scheme", "search.txcourts.gov/Case.aspx"},
		{"ftp", "ftp://search.txcourts.gov/Case.aspx"},
		{"no host", "https:///Case.aspx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeFetcher{page: casePage(1)}
			_, err := newTestPipeline(f, nil, &recordingThrottle{}).Run(context.Background(), tt.url, false)
			var ie *types.InputError
			assert.True(t, errors.As(err, &ie), "got %v", err)
			assert.Empty(t, f.fetched)
		})
	}
}

func TestRun_CancelReturnsPartialResult(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := &fakeFetcher{page: casePage(4)}
	f.onFetch = func(id int) {
		if id == 3 {
			cancel()
		}
	}

	res, err := newTestPipeline(f, nil, &recordingThrottle{}).Run(ctx, caseURL, true)
	require.NoError(t, err)

	assert.Equal(t, 4, res.TotalLinksFound)
	assert.Equal(t, 2, res.ProcessedCount)
	assert.Empty(t, res.Failures, "cancellation is not a document failure")
	assert.Contains(t, res.MergedContent, "<document id=2>")
	assert.NotContains(t, res.MergedContent, "<document id=3>")
	assert.Contains(t, res.Note, "stopped early")
}

func TestRun_SameTextInBothModes(t *testing.T) {
	sep, err := newTestPipeline(&fakeFetcher{page: casePage(3)}, nil, &recordingThrottle{}).
		Run(context.Background(), caseURL, false)
	require.NoError(t, err)
	merged, err := newTestPipeline(&fakeFetcher{page: casePage(3)}, nil, &recordingThrottle{}).
		Run(context.Background(), caseURL, true)
	require.NoError(t, err)

	for _, d := range sep.Documents {
		assert.Contains(t, merged.MergedContent, fmt.Sprintf("<document id=%d>\n%s\n</document>", d.ID, d.Text))
	}
}

func TestValidateURL_AllowedHosts(t *testing.T) {
	allowed := []string{"search.txcourts.gov"}

	assert.NoError(t, ValidateURL("https://search.txcourts.gov/Case.aspx?cn=1", allowed))
	assert.NoError(t, ValidateURL("https://SEARCH.txcourts.gov/Case.aspx", allowed))
	assert.NoError(t, ValidateURL("https://example.com/", nil))

	err := ValidateURL("https://evil.example/Case.aspx", allowed)
	var ie *types.InputError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "URL host not allowed", ie.Reason)
}

func TestValidateURL_AllowedHostsIgnoreCase(t *testing.T) {
	allowed := []string{"Search.TxCourts.gov"}

	assert.NoError(t, ValidateURL("https://search.txcourts.gov/Case.aspx?cn=1", allowed))
	assert.NoError(t, ValidateURL("https://SEARCH.TXCOURTS.GOV/Case.aspx", allowed))
	assert.Error(t, ValidateURL("https://txcourts.gov/Case.aspx", allowed))
}

func TestRun_FetchHookSeesEveryPayload(t *testing.T) {
	f := &fakeFetcher{
		page:    casePage(3),
		docErrs: map[int]error{2: &types.DocumentFetchError{ID: 2, StatusCode: 404}},
	}
	c := &echoConverter{bad: map[string]bool{"text of document 3": true}}

	var seen []int
	p := New(f, c, types.HarvestConfig{},
		WithThrottle(func(time.Duration) Throttle { return &recordingThrottle{} }),
		WithFetchHook(func(d types.FetchedDocument) { seen = append(seen, d.ID) }),
	)

	res, err := p.Run(context.Background(), caseURL, false)
	require.NoError(t, err)

	assert.Equal(t, 1, res.ProcessedCount)
	assert.Equal(t, []int{1, 3}, seen, "fetched payloads are reported even when conversion fails")
}
