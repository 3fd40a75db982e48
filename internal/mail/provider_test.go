package mail

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
	"testing"

	"github.com/resend/resend-go/v2"
	"github.com/sendgrid/rest"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/notegenius/internal/config"
	"github.com/magabrotheeeer/notegenius/internal/lib/smtp"
)

var testMsg = Message{
	To:      "alice@example.com",
	Subject: "Hello",
	HTML:    "<p>hi</p>",
	Attachments: []Attachment{
		{Filename: "logo.png", ContentType: "image/png", ContentID: "logo", Content: []byte("png-bytes")},
	},
}

type mockResend struct {
	mock.Mock
}

func (m *mockResend) SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	args := m.Called(ctx, params)
	resp, _ := args.Get(0).(*resend.SendEmailResponse)
	return resp, args.Error(1)
}

type mockSendGrid struct {
	mock.Mock
}

func (m *mockSendGrid) SendWithContext(ctx context.Context, email *sgmail.SGMailV3) (*rest.Response, error) {
	args := m.Called(ctx, email)
	resp, _ := args.Get(0).(*rest.Response)
	return resp, args.Error(1)
}

func TestNewProviders_Order(t *testing.T) {
	providers := NewProviders(config.Mail{
		FromAddress:    "noreply@example.com",
		SendGridAPIKey: "SG.key",
		SMTPHost:       "smtp.example.com",
		SMTPPort:       "587",
		SMTPUser:       "u@example.com",
		SMTPPass:       "p",
	}, discardLogger())

	require.Len(t, providers, 3)
	assert.Equal(t, "resend", providers[0].Name())
	assert.False(t, providers[0].Configured())
	assert.Equal(t, "sendgrid", providers[1].Name())
	assert.True(t, providers[1].Configured())
	assert.Equal(t, "smtp", providers[2].Name())
	assert.True(t, providers[2].Configured())
}

func TestNewProviders_NoneConfigured(t *testing.T) {
	for _, p := range NewProviders(config.Mail{SMTPHost: "smtp.example.com"}, discardLogger()) {
		assert.False(t, p.Configured(), p.Name())
		assert.ErrorIs(t, p.Send(context.Background(), testMsg), ErrNotConfigured)
	}
}

func TestResendProvider_Send(t *testing.T) {
	emails := new(mockResend)
	emails.On("SendWithContext", mock.Anything, mock.MatchedBy(func(r *resend.SendEmailRequest) bool {
		return r.From == "Note Genius <noreply@example.com>" &&
			len(r.To) == 1 && r.To[0] == "alice@example.com" &&
			r.Subject == "Hello" && r.Html == "<p>hi</p>" &&
			len(r.Attachments) == 1 && r.Attachments[0].Filename == "logo.png" &&
			r.Attachments[0].ContentId == "logo" &&
			r.Attachments[0].ContentType == "image/png"
	})).Return(&resend.SendEmailResponse{Id: "1"}, nil).Once()

	p := NewResendProvider(emails, Address{Name: "Note Genius", Email: "noreply@example.com"})
	require.NoError(t, p.Send(context.Background(), testMsg))
	emails.AssertExpectations(t)
}

func TestResendProvider_Error(t *testing.T) {
	emails := new(mockResend)
	emails.On("SendWithContext", mock.Anything, mock.Anything).Return(nil, errors.New("403 forbidden")).Once()

	p := NewResendProvider(emails, Address{Email: "noreply@example.com"})
	err := p.Send(context.Background(), testMsg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403 forbidden")
}

func TestSendGridProvider_Send(t *testing.T) {
	client := new(mockSendGrid)
	client.On("SendWithContext", mock.Anything, mock.MatchedBy(func(e *sgmail.SGMailV3) bool {
		if e.Subject != "Hello" || len(e.Attachments) != 1 {
			return false
		}
		a := e.Attachments[0]
		return a.ContentID == "logo" && a.Disposition == "inline" && a.Filename == "logo.png"
	})).Return(&rest.Response{StatusCode: 202}, nil).Once()

	p := NewSendGridProvider(client, Address{Name: "Note Genius", Email: "noreply@example.com"})
	require.NoError(t, p.Send(context.Background(), testMsg))
	client.AssertExpectations(t)
}

func TestSendGridProvider_BadStatus(t *testing.T) {
	client := new(mockSendGrid)
	client.On("SendWithContext", mock.Anything, mock.Anything).
		Return(&rest.Response{StatusCode: 401, Body: "unauthorized"}, nil).Once()

	p := NewSendGridProvider(client, Address{Email: "noreply@example.com"})
	err := p.Send(context.Background(), testMsg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

type fakeTransport struct {
	client  *fakeSMTPClient
	connErr error
}

func (f *fakeTransport) Connect(context.Context) (smtp.Client, error) {
	if f.connErr != nil {
		return nil, f.connErr
	}
	return f.client, nil
}

func (f *fakeTransport) GetSMTPUser() string { return "bot@example.com" }

type fakeSMTPClient struct {
	from, to string
	data     bytes.Buffer
	rcptErr  error
	quit     bool
	closed   bool
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func (c *fakeSMTPClient) Mail(from string) error {
	c.from = from
	return nil
}

func (c *fakeSMTPClient) Rcpt(to string) error {
	c.to = to
	return c.rcptErr
}

func (c *fakeSMTPClient) Data() (io.WriteCloser, error) {
	return nopWriteCloser{&c.data}, nil
}

func (c *fakeSMTPClient) Quit() error {
	c.quit = true
	return nil
}

func (c *fakeSMTPClient) Close() error {
	c.closed = true
	return nil
}

func TestSMTPProvider_Send(t *testing.T) {
	client := &fakeSMTPClient{}
	p := NewSMTPProvider(&fakeTransport{client: client}, "Note Genius")

	require.NoError(t, p.Send(context.Background(), testMsg))
	assert.Equal(t, "bot@example.com", client.from)
	assert.Equal(t, "alice@example.com", client.to)
	assert.True(t, client.quit)
	assert.True(t, client.closed)

	parsed, err := mail.ReadMessage(bytes.NewReader(client.data.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", parsed.Header.Get("To"))
	assert.Contains(t, parsed.Header.Get("From"), "<bot@example.com>")

	mediaType, params, err := mime.ParseMediaType(parsed.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/related", mediaType)

	mr := multipart.NewReader(parsed.Body, params["boundary"])
	htmlPart, err := mr.NextPart()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(htmlPart.Header.Get("Content-Type"), "text/html"))

	logoPart, err := mr.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "<logo>", logoPart.Header.Get("Content-Id"))
	assert.Contains(t, logoPart.Header.Get("Content-Disposition"), "inline")

	_, err = mr.NextPart()
	assert.ErrorIs(t, err, io.EOF)
}

func TestSMTPProvider_Errors(t *testing.T) {
	p := NewSMTPProvider(&fakeTransport{connErr: errors.New("dial refused")}, "")
	err := p.Send(context.Background(), testMsg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dial refused")

	client := &fakeSMTPClient{rcptErr: errors.New("550 no such user")}
	p = NewSMTPProvider(&fakeTransport{client: client}, "")
	err = p.Send(context.Background(), testMsg)
	require.Error(t, err)
	assert.True(t, client.closed)
	assert.False(t, client.quit)
}
