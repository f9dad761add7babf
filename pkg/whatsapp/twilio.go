package whatsapp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/twilio/twilio-go"
	api "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioSender delivers over Twilio's WhatsApp channel. Twilio addresses
// WhatsApp recipients as "whatsapp:+E164".
type TwilioSender struct {
	FromNumber string        `yaml:"fromNumber"`
	Username   string        `yaml:"username"`
	Password   string        `yaml:"password"`
	Timeout    time.Duration `yaml:"timeout"`
	Client     *twilio.RestClient
}

func NewTwilioSender(accountSid, authToken, fromNumber string) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSid,
		Password: authToken,
	})
	client.Client.SetTimeout(10 * time.Second)
	return &TwilioSender{
		FromNumber: fromNumber,
		Client:     client,
		Timeout:    10 * time.Second,
	}
}

func (t *TwilioSender) Send(ctx context.Context, msg Message) error {
	if t.Client == nil {
		t.Client = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: t.Username,
			Password: t.Password,
		})
		timeout := t.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		t.Client.Client.SetTimeout(timeout)
	}

	params := &api.CreateMessageParams{}
	params.SetBody(msg.Body)
	params.SetFrom(waAddress(t.FromNumber))
	params.SetTo(waAddress(msg.To))

	resp, err := t.Client.Api.CreateMessage(params)
	if err != nil {
		return err
	}
	if resp.ErrorMessage != nil && *resp.ErrorMessage != "" {
		return fmt.Errorf("twilio rejected message: %s", *resp.ErrorMessage)
	}
	return nil
}

func waAddress(num string) string {
	if strings.HasPrefix(num, "whatsapp:") {
		return num
	}
	return "whatsapp:" + num
}
