package mail

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogSenderRequiresRecipients(t *testing.T) {
	err := LogSender{}.Send(context.Background(), Message{From: "blog@example.com"})
	assert.ErrorIs(t, err, ErrNoRecipients)

	err = LogSender{}.Send(context.Background(), Message{
		From:    "blog@example.com",
		To:      []string{"friend@example.com"},
		Subject: "hello",
	})
	assert.NoError(t, err)
}

func TestBuildMsgRejectsInvalidAddresses(t *testing.T) {
	_, err := buildMsg(Message{From: "not an address", To: []string{"friend@example.com"}})
	assert.Error(t, err)

	_, err = buildMsg(Message{From: "blog@example.com", To: []string{"@@"}})
	assert.Error(t, err)

	out, err := buildMsg(Message{From: "blog@example.com", To: []string{"friend@example.com"}, Subject: "hi", Body: "body"})
	require.NoError(t, err)
	assert.NotNil(t, out)
}

func TestSMTPSenderValidatesBeforeDialing(t *testing.T) {
	sender := NewSMTPSender(SMTPConfig{Host: "127.0.0.1", Port: 1})
	err := sender.Send(context.Background(), Message{From: "blog@example.com"})
	assert.True(t, errors.Is(err, ErrNoRecipients))
}

func TestSenderFunc(t *testing.T) {
	var got Message
	sender := SenderFunc(func(_ context.Context, msg Message) error {
		got = msg
		return nil
	})

	require.NoError(t, sender.Send(context.Background(), Message{Subject: "s"}))
	assert.Equal(t, "s", got.Subject)
}
