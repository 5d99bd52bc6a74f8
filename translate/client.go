// Package translate talks to the web translation service: signed translate
// and text-to-speech requests, and the supported-language lists scraped from
// the landing page.
//
// Network I/O goes through a Transport. Calls are synchronous, perform at
// most one round trip each and keep no state between invocations.
package translate

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/minios-linux/gtranslate/langlist"
	"github.com/minios-linux/gtranslate/speech"
	"github.com/minios-linux/gtranslate/token"
	"github.com/minios-linux/gtranslate/validation"
)

// ---------------------------------------------------------------------------
// Defaults
// ---------------------------------------------------------------------------

const (
	// DefaultServiceURL is the translation service root.
	DefaultServiceURL = "https://translate.google.com"
	// DefaultSpeechURL is the text-to-speech endpoint.
	DefaultSpeechURL = "https://translate.google.com/translate_tts"
	// DefaultHostLanguage is the interface language sent as hl.
	DefaultHostLanguage = "en"
	// DefaultUserAgent is the legacy mobile browser string the endpoints
	// answer to.
	DefaultUserAgent = "Mozilla/5.0 (iPhone; U; CPU iPhone OS 4_3_3 like Mac OS X; en-us) " +
		"AppleWebKit/533.17.9 (KHTML, like Gecko) Version/5.0.2 Mobile/8J2 Safari/6533.18.5"
)

// dataTypes are the dt flags requested from the translate endpoint.
var dataTypes = []string{"bd", "ex", "ld", "md", "qc", "rw", "rm", "ss", "t", "at", "sw"}

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

var (
	// ErrInvalidInput reports a missing language or text. It is returned
	// before any signing or network work.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUpstreamUnavailable reports an empty or absent service response.
	ErrUpstreamUnavailable = errors.New("translate server is down")
)

type translateRequest struct {
	From string `json:"from" validate:"required"`
	To   string `json:"to" validate:"required"`
	Text string `json:"text" validate:"required"`
}

type speechRequest struct {
	Lang string `json:"lang" validate:"required"`
	Text string `json:"text" validate:"required"`
}

func validateRequest(req any) error {
	if err := validation.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Client
// ---------------------------------------------------------------------------

// Options configures a Client. Zero values fall back to the defaults above.
type Options struct {
	// ServiceURL is the translation service root (no trailing slash needed).
	ServiceURL string
	// SpeechURL is the text-to-speech endpoint.
	SpeechURL string
	// HostLanguage is sent as the hl parameter.
	HostLanguage string
	// Transport performs HTTP requests. Default: NewHTTPTransport with
	// DefaultUserAgent.
	Transport Transport
	// Signer computes tk signatures. Default: token.NewSigner().
	Signer *token.Signer
	// Player plays speech. Default: detected on first Say.
	Player speech.Player
	// Logger receives debug output. Default: disabled.
	Logger *zerolog.Logger
}

// Client issues requests against the translation service.
type Client struct {
	serviceURL   string
	speechURL    string
	hostLanguage string
	transport    Transport
	signer       *token.Signer
	player       speech.Player
	log          zerolog.Logger
}

// New returns a Client configured by opts.
func New(opts Options) *Client {
	c := &Client{
		serviceURL:   strings.TrimRight(opts.ServiceURL, "/"),
		speechURL:    opts.SpeechURL,
		hostLanguage: opts.HostLanguage,
		transport:    opts.Transport,
		signer:       opts.Signer,
		player:       opts.Player,
		log:          zerolog.Nop(),
	}
	if opts.Logger != nil {
		c.log = opts.Logger.With().Str("component", "translate").Logger()
	}
	if c.serviceURL == "" {
		c.serviceURL = DefaultServiceURL
	}
	if c.speechURL == "" {
		c.speechURL = DefaultSpeechURL
	}
	if c.hostLanguage == "" {
		c.hostLanguage = DefaultHostLanguage
	}
	if c.transport == nil {
		c.transport = NewHTTPTransport(TransportOptions{Logger: opts.Logger})
	}
	if c.signer == nil {
		c.signer = token.NewSigner()
	}
	return c
}

// Translate translates text from one language to another. The result is the
// service's repaired JSON array; see Translation for accessors.
func (c *Client) Translate(ctx context.Context, from, to, text string) (*Translation, error) {
	if err := validateRequest(translateRequest{From: from, To: to, Text: text}); err != nil {
		return nil, err
	}

	seed, tk := c.signer.Sign(text)
	endpoint := c.translateURL(from, to, tk)
	c.log.Debug().Str("sl", from).Str("tl", to).Uint32("seed", seed).Str("tk", tk).Msg("translate")

	body, err := c.transport.Post(ctx, endpoint, url.Values{"q": {text}})
	if err != nil {
		return nil, fmt.Errorf("translate request: %w", err)
	}
	c.log.Trace().Int("bytes", len(body)).Msg("translate response")

	return ParseTranslation(body)
}

// Speak fetches synthesized speech for text and returns the raw audio bytes.
func (c *Client) Speak(ctx context.Context, lang, text string) ([]byte, error) {
	if err := validateRequest(speechRequest{Lang: lang, Text: text}); err != nil {
		return nil, err
	}

	endpoint := c.speechEndpoint(lang)
	c.log.Debug().Str("tl", lang).Msg("speech")

	audio, err := c.transport.Post(ctx, endpoint, url.Values{"q": {text}})
	if err != nil {
		return nil, fmt.Errorf("speech request: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("%w: empty audio response", ErrUpstreamUnavailable)
	}
	c.log.Trace().Int("bytes", len(audio)).Msg("speech response")
	return audio, nil
}

// Say speaks text aloud through the configured player.
func (c *Client) Say(ctx context.Context, lang, text string) error {
	audio, err := c.Speak(ctx, lang, text)
	if err != nil {
		return err
	}

	player := c.player
	if player == nil {
		detected, err := speech.DetectPlayer()
		if err != nil {
			return err
		}
		player = detected
	}
	return speech.Play(ctx, audio, player)
}

// SupportedLanguages fetches the landing page and returns the source and
// target language lists. Empty lists mean the page layout no longer matches
// and are not an error.
func (c *Client) SupportedLanguages(ctx context.Context) (from, to []langlist.Language, err error) {
	page, err := c.transport.Get(ctx, c.serviceURL)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching language page: %w", err)
	}

	from, to = langlist.Extract(string(page))
	if len(from) == 0 && len(to) == 0 {
		c.log.Warn().Int("bytes", len(page)).Msg("no language lists found, page layout may have changed")
	}
	return from, to, nil
}

// ---------------------------------------------------------------------------
// URLs
// ---------------------------------------------------------------------------

func (c *Client) translateURL(from, to, tk string) string {
	params := []string{
		"client=t",
		"sl=" + url.QueryEscape(from),
		"tl=" + url.QueryEscape(to),
		"hl=" + url.QueryEscape(c.hostLanguage),
	}
	for _, dt := range dataTypes {
		params = append(params, "dt="+dt)
	}
	params = append(params,
		"ie=UTF-8", "oe=UTF-8", "prev=btn", "rom=1", "ssel=0", "tsel=0",
		"tk="+url.QueryEscape(tk),
	)
	return c.serviceURL + "/translate_a/single?" + strings.Join(params, "&")
}

// speechEndpoint carries no signature: the speech service takes only the
// language and encodings.
func (c *Client) speechEndpoint(lang string) string {
	sep := "?"
	if strings.Contains(c.speechURL, "?") {
		sep = "&"
	}
	return c.speechURL + sep + "tl=" + url.QueryEscape(lang) +
		"&ie=UTF-8&oe=UTF-8"
}
