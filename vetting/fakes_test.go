package vetting

import (
	"context"
	"sync"
)

type fakePage struct {
	opener *fakeOpener
	url    string
}

func (p *fakePage) Navigate(_ context.Context, url string) error {
	if err, ok := p.opener.navErrs[url]; ok {
		return err
	}
	p.url = url
	return nil
}

func (p *fakePage) HTML(context.Context) (string, error) {
	return p.opener.pages[p.url], nil
}

func (p *fakePage) Close() error {
	p.opener.mu.Lock()
	defer p.opener.mu.Unlock()
	p.opener.closed++
	return nil
}

// fakeOpener serves canned markup per URL and counts closed pages
type fakeOpener struct {
	pages   map[string]string
	navErrs map[string]error

	mu     sync.Mutex
	opened int
	closed int
}

func (o *fakeOpener) NewPage(context.Context) (Page, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.opened++
	return &fakePage{opener: o}, nil
}

type fakeBrowser struct {
	*fakeOpener
	envelope *CaptureEnvelope
	err      error
}

func (b *fakeBrowser) Capture(context.Context, string) (*CaptureEnvelope, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.envelope, nil
}

type fakeCompleter struct {
	text   string
	err    error
	prompt string
}

func (c *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	c.prompt = prompt
	return c.text, c.err
}
