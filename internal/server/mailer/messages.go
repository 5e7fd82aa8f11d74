package mailer

import "fmt"

func ResetMessage(to, link string) Message {
	return Message{
		To:      to,
		Subject: "Reset your Safe360 password",
		Body: fmt.Sprintf("A password reset was requested for your account.\n\n"+
			"Open this link within 30 minutes to choose a new password:\n%s\n\n"+
			"If you did not ask for this, ignore this message.", link),
	}
}

func PasswordChangedMessage(to string) Message {
	return Message{
		To:      to,
		Subject: "Your Safe360 password was changed",
		Body:    "The password for your account has just been changed.",
	}
}

func InviteMessage(to, inviterName, link string) Message {
	return Message{
		To:      to,
		Subject: fmt.Sprintf("%s invited you to Safe360", inviterName),
		Body: fmt.Sprintf("%s shared vault access with you.\n\n"+
			"Open this link to accept the invitation and set your PIN:\n%s", inviterName, link),
	}
}

func WelcomeMessage(to string) Message {
	return Message{
		To:      to,
		Subject: "Welcome to Safe360",
		Body:    "Your guest access is active. Sign in with your email and PIN.",
	}
}

func InviteAcceptedMessage(to, guestEmail string) Message {
	return Message{
		To:      to,
		Subject: "Invitation accepted",
		Body:    fmt.Sprintf("%s accepted your invitation and can now sign in.", guestEmail),
	}
}

func VaultPendingMessage(to, guestEmail, vaultName string) Message {
	return Message{
		To:      to,
		Subject: "Vault awaiting approval",
		Body:    fmt.Sprintf("%s created the vault %q. Approve or reject it from your dashboard.", guestEmail, vaultName),
	}
}
