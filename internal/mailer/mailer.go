// Copyright (c) 2026 the Costimizer authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package mailer sends the guide-ready notification email through Resend.
package mailer

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/resend/resend-go/v2"
)

const guideReadySubject = "Your Travel Guide is Ready!"

// guideReadyTemplate is the notification body. One actionable link, keyed
// by the guide record's identifier.
var guideReadyTemplate = template.Must(template.New("guideReady").Parse(`<!DOCTYPE html>
<html>
  <head>
    <meta charset="UTF-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1.0" />
    <title>Travel Guide</title>
  </head>
  <body style="margin: 0; padding: 0; font-family: Arial, sans-serif; background-color: #f8f9fa;">
    <div style="max-width: 600px; margin: 0 auto; background-color: #ffffff; border-radius: 8px; overflow: hidden;">
      <div style="background-color: #007bff; color: #ffffff; padding: 20px; text-align: center;">
        <h1 style="margin: 0; font-size: 24px;">Your Travel Guide is Ready!</h1>
      </div>
      <div style="padding: 20px; color: #333333;">
        <p style="font-size: 16px; line-height: 1.6;">Hi <strong>{{.Name}}</strong>,</p>
        <p style="font-size: 16px; line-height: 1.6;">
          Your personalized travel guide has been generated successfully!
          You can access all the details through the link below:
        </p>
        <div style="text-align: center; margin: 30px 0;">
          <a href="{{.Link}}"
            style="display: inline-block; background-color: #28a745; color: #ffffff; text-decoration: none; padding: 12px 24px; border-radius: 5px; font-size: 16px; font-weight: bold;">
            View Your Guide
          </a>
        </div>
        <p style="font-size: 14px; color: #666666; text-align: center; margin-top: 20px;">
          If the button does not work, copy and paste this link into your browser:
        </p>
        <p style="font-size: 14px; color: #007bff; word-wrap: break-word; text-align: center;">{{.Link}}</p>
      </div>
      <div style="background-color: #343a40; color: #ffffff; padding: 10px; text-align: center; font-size: 12px;">
        <p style="margin: 0;">Thank you for using our service!</p>
        <p style="margin: 0;">The Costimizer Team</p>
      </div>
    </div>
  </body>
</html>`))

// ResendMailer sends transactional email through the Resend API.
type ResendMailer struct {
	client  *resend.Client
	from    string
	baseURL string
}

// NewResendMailer creates a mailer. baseURL is the public site root used
// to build the dashboard link.
func NewResendMailer(apiKey, from, baseURL string) *ResendMailer {
	return &ResendMailer{
		client:  resend.NewClient(apiKey),
		from:    from,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// SendGuideReady emails the customer a link to their generated guide.
func (m *ResendMailer) SendGuideReady(ctx context.Context, to, name string, guideID uuid.UUID) error {
	link := fmt.Sprintf("%s/dashboard/%s", m.baseURL, guideID)

	var body strings.Builder
	if err := guideReadyTemplate.Execute(&body, struct {
		Name string
		Link string
	}{Name: name, Link: link}); err != nil {
		return fmt.Errorf("render guide-ready email: %w", err)
	}

	sent, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: guideReadySubject,
		Html:    body.String(),
	})
	if err != nil {
		return fmt.Errorf("send guide-ready email: %w", err)
	}

	slog.Info("guide-ready email sent",
		"to", to,
		"guide_id", guideID,
		"email_id", sent.Id,
	)
	return nil
}

// NoopMailer logs instead of sending. Used when no Resend API key is
// configured (local development).
type NoopMailer struct {
	baseURL string
}

// NewNoopMailer creates the logging-only mailer.
func NewNoopMailer(baseURL string) *NoopMailer {
	return &NoopMailer{baseURL: strings.TrimRight(baseURL, "/")}
}

// SendGuideReady logs the link it would have mailed.
func (m *NoopMailer) SendGuideReady(ctx context.Context, to, name string, guideID uuid.UUID) error {
	slog.Info("email sending disabled, guide link not mailed",
		"to", to,
		"link", fmt.Sprintf("%s/dashboard/%s", m.baseURL, guideID),
	)
	return nil
}
