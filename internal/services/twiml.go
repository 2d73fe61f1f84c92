package services

import (
	"strconv"

	"github.com/twilio/twilio-go/twiml"

	"github.com/DineVoice/dinevoice-backend/internal/dialogue"
)

// RenderVoice turns one dialogue reply into the TwiML document the
// provider executes. actionURL is where gathered input posts back to; a
// trailing Redirect re-enters the webhook with empty input when the
// gather times out, which the engine answers with a re-prompt.
func RenderVoice(reply dialogue.Reply, actionURL string) (string, error) {
	var verbs []twiml.Element

	if reply.Gather != nil {
		gather := &twiml.VoiceGather{
			Input:   reply.Gather.Input,
			Action:  actionURL,
			Method:  "POST",
			Timeout: strconv.Itoa(reply.Gather.Timeout),
		}
		if reply.Gather.NumDigits > 0 {
			gather.NumDigits = strconv.Itoa(reply.Gather.NumDigits)
		}
		if reply.Gather.SpeechTimeout != "" {
			gather.SpeechTimeout = reply.Gather.SpeechTimeout
		}
		for _, line := range reply.Say {
			gather.InnerElements = append(gather.InnerElements, &twiml.VoiceSay{Message: line})
		}
		verbs = append(verbs, gather)
		verbs = append(verbs, &twiml.VoiceRedirect{Url: actionURL, Method: "POST"})
		return twiml.Voice(verbs)
	}

	for _, line := range reply.Say {
		verbs = append(verbs, &twiml.VoiceSay{Message: line})
	}
	if reply.DialNumber != "" {
		verbs = append(verbs, &twiml.VoiceDial{Number: reply.DialNumber})
	}
	if reply.Hangup {
		verbs = append(verbs, &twiml.VoiceHangup{})
	}
	return twiml.Voice(verbs)
}

// RenderApology is the fixed document for calls we cannot route to a
// restaurant.
func RenderApology(message string) (string, error) {
	return twiml.Voice([]twiml.Element{
		&twiml.VoiceSay{Message: message},
		&twiml.VoiceHangup{},
	})
}
