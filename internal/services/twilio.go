package services

import (
	"fmt"
	"log"
	"os"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type TwilioService struct {
	client *twilio.RestClient
	from   string // E.164 voice/SMS number the calls and texts originate from
}

// NewTwilioService creates a new Twilio service instance
func NewTwilioService() (*TwilioService, error) {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")
	from := os.Getenv("TWILIO_PHONE_NUMBER") // Format: "+15551234567"

	if accountSid == "" || authToken == "" || from == "" {
		return nil, fmt.Errorf("missing Twilio credentials in environment variables")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSid,
		Password: authToken,
	})

	return &TwilioService{
		client: client,
		from:   from,
	}, nil
}

// From returns the configured outbound number.
func (t *TwilioService) From() string {
	return t.from
}

// SendSMS sends a text message via Twilio
func (t *TwilioService) SendSMS(to string, message string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.from)
	params.SetTo(to)
	params.SetBody(message)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		log.Printf("❌ Failed to send SMS to %s: %v", to, err)
		return err
	}

	log.Printf("✅ SMS sent to %s! SID: %s", to, *resp.Sid)
	return nil
}

// PlaceCall starts an outbound call that fetches its instructions from
// the given webhook URL.
func (t *TwilioService) PlaceCall(to string, webhookURL string) (string, error) {
	params := &twilioApi.CreateCallParams{}
	params.SetFrom(t.from)
	params.SetTo(to)
	params.SetUrl(webhookURL)
	params.SetMethod("POST")

	resp, err := t.client.Api.CreateCall(params)
	if err != nil {
		log.Printf("❌ Failed to place call to %s: %v", to, err)
		return "", err
	}

	sid := ""
	if resp.Sid != nil {
		sid = *resp.Sid
	}
	log.Printf("✅ Outbound call to %s started! SID: %s", to, sid)
	return sid, nil
}
