package service

import "fmt"

func registrationReceivedTemplate(name, appName string) (string, string) {
	subject := fmt.Sprintf("Your %s registration was received", appName)
	body := fmt.Sprintf(`Hi %s,

Thanks for registering. An administrator will review your account shortly.
You will get another email once it has been approved.

Best,
The %s Team`, name, appName)

	return subject, body
}

func accountApprovedTemplate(name, loginURL, appName string) (string, string) {
	subject := fmt.Sprintf("Your %s account is approved", appName)
	body := fmt.Sprintf(`Hi %s,

Your account has been approved. You can sign in now:
%s

Best,
The %s Team`, name, loginURL, appName)

	return subject, body
}

func accountRejectedTemplate(name, appName string) (string, string) {
	subject := fmt.Sprintf("Your %s registration", appName)
	body := fmt.Sprintf(`Hi %s,

Unfortunately your registration could not be approved.
If you think this is a mistake, please contact the campus administrator.

Best,
The %s Team`, name, appName)

	return subject, body
}
