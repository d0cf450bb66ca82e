package service

import "fmt"

func magicLinkEmailTemplate(magicURL, appName string) (string, string) {
	subject := fmt.Sprintf("Sign in to %s", appName)
	body := fmt.Sprintf(`Click this link to sign in to your account:
%s

This link expires in 10 minutes and can only be used once.

If you didn't request this, ignore this email.

Best,
The %s Team`, magicURL, appName)

	return subject, body
}

func welcomeEmailTemplate(name, journalURL, appName string) (string, string) {
	subject := fmt.Sprintf("Welcome to %s!", appName)
	body := fmt.Sprintf(`Hi %s,

Your account is ready. Your journal is private, and a few minutes of
reflection a day goes a long way.

Write your first entry: %s

If you have questions, reach out to our support team.

Best,
The %s Team`, name, journalURL, appName)

	return subject, body
}

func subscriptionChangedEmailTemplate(planName, appName string) (string, string) {
	subject := fmt.Sprintf("Your %s plan has changed", appName)
	body := fmt.Sprintf(`Your subscription is now on the %s plan.

You can review your plan and billing details any time from Settings.

If you didn't make this change, contact support right away.

Best,
The %s Team`, planName, appName)

	return subject, body
}
