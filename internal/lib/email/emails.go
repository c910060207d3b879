package email

// SendWelcomeEmail sends a welcome email to a new user.
func (c *Client) SendWelcomeEmail(to, name string) error {
	data := map[string]string{
		"UserName": name,
	}

	return c.SendEmail(
		to,
		"Welcome to the Natours Family!",
		TemplateWelcome,
		data,
	)
}
