package contact

import "fmt"

// notificationSubject is the internal alert sent to the team inbox
func notificationSubject(name string) string {
	return fmt.Sprintf("New Contact Form Submission from %s", name)
}

func notificationText(sub *Submission) string {
	return fmt.Sprintf(
		"New contact form submission\n\nName: %s\nEmail: %s\n\nMessage:\n%s\n",
		sub.Name, sub.Email, sub.Message,
	)
}

func notificationHTML(sub *Submission) string {
	return fmt.Sprintf(`<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>New Contact Form Submission</h2>
  <p><strong>Name:</strong> %s</p>
  <p><strong>Email:</strong> %s</p>
  <h3>Message:</h3>
  <p style="white-space: pre-wrap; background: #f5f5f5; padding: 12px; border-radius: 4px;">%s</p>
</body>
</html>`, sub.Name, sub.Email, sub.Message)
}

// Auto-response templates, localized per submission locale

func autoResponseSubject(locale string) string {
	if locale == "ar" {
		return "شكراً لتواصلك مع SentimentAI"
	}
	return "Thank you for contacting SentimentAI"
}

func autoResponseText(sub *Submission) string {
	if sub.Locale == "ar" {
		return fmt.Sprintf(
			"مرحباً %s،\n\nشكراً لتواصلك معنا. لقد استلمنا رسالتك وسيرد عليك فريقنا في أقرب وقت ممكن.\n\nمع أطيب التحيات،\nفريق SentimentAI\n",
			sub.Name,
		)
	}
	return fmt.Sprintf(
		"Hi %s,\n\nThank you for reaching out. We have received your message and our team will get back to you as soon as possible.\n\nBest regards,\nThe SentimentAI Team\n",
		sub.Name,
	)
}

func autoResponseHTML(sub *Submission) string {
	if sub.Locale == "ar" {
		return fmt.Sprintf(`<html dir="rtl">
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>شكراً لتواصلك معنا</h2>
  <p>مرحباً %s،</p>
  <p>لقد استلمنا رسالتك وسيرد عليك فريقنا في أقرب وقت ممكن.</p>
  <p>مع أطيب التحيات،<br/>فريق SentimentAI</p>
</body>
</html>`, sub.Name)
	}
	return fmt.Sprintf(`<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Thank you for reaching out</h2>
  <p>Hi %s,</p>
  <p>We have received your message and our team will get back to you as soon as possible.</p>
  <p>Best regards,<br/>The SentimentAI Team</p>
</body>
</html>`, sub.Name)
}
