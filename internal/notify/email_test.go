package notify

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
)

type stubSES struct {
	inputs []*sesv2.SendEmailInput
}

func (s *stubSES) SendEmail(ctx context.Context, params *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	s.inputs = append(s.inputs, params)
	return &sesv2.SendEmailOutput{}, nil
}

func TestSESSenderBuildsSimpleMessage(t *testing.T) {
	stub := &stubSES{}
	sender := NewSESSender(stub, SESConfig{FromEmail: "noreply@careloop.example", FromName: "CareLoop"}, nil)

	err := sender.Send(context.Background(), EmailMessage{
		To:      "amina@example.com",
		Subject: "Appointment approved",
		Body:    "Your appointment was approved.",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(stub.inputs) != 1 {
		t.Fatalf("expected one SES call, got %d", len(stub.inputs))
	}
	in := stub.inputs[0]
	if aws.ToString(in.FromEmailAddress) != "CareLoop <noreply@careloop.example>" {
		t.Fatalf("from = %q", aws.ToString(in.FromEmailAddress))
	}
	if in.Destination.ToAddresses[0] != "amina@example.com" {
		t.Fatalf("to = %v", in.Destination.ToAddresses)
	}
	if aws.ToString(in.Content.Simple.Subject.Data) != "Appointment approved" {
		t.Fatalf("subject = %q", aws.ToString(in.Content.Simple.Subject.Data))
	}
	if in.Content.Simple.Body.Html != nil {
		t.Fatal("plain message must not carry an html part")
	}
}

func TestSESSenderIncludesHTMLPart(t *testing.T) {
	stub := &stubSES{}
	sender := NewSESSender(stub, SESConfig{FromEmail: "noreply@careloop.example"}, nil)

	err := sender.Send(context.Background(), EmailMessage{
		To:      "amina@example.com",
		Subject: "Welcome",
		Body:    "Welcome to the clinic.",
		HTML:    "<p>Welcome to the clinic.</p>",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if stub.inputs[0].Content.Simple.Body.Html == nil {
		t.Fatal("html part missing")
	}
}

func TestNilSendersAreDisabled(t *testing.T) {
	if s := NewSendGridSender(SendGridConfig{}, nil); s != nil {
		t.Fatal("sendgrid sender without api key must be nil")
	}
	if s := NewSESSender(nil, SESConfig{}, nil); s != nil {
		t.Fatal("ses sender without client must be nil")
	}
}
