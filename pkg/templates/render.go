package templates

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// ReminderData is the variable set exposed to automation rule templates.
type ReminderData struct {
	CustomerName string
	BusinessName string
	Services     string
	Time         string
}

func NewReminderData(customerName, businessName string, serviceNames []string, localTime string) ReminderData {
	return ReminderData{
		CustomerName: customerName,
		BusinessName: businessName,
		Services:     strings.Join(serviceNames, ", "),
		Time:         localTime,
	}
}

// Render executes a rule's message template against the reminder data.
// Templates are plain text; WhatsApp has no markup to escape.
func Render(source string, data ReminderData) (string, error) {
	t, err := template.New("tmpl").Option("missingkey=error").Parse(source)
	if err != nil {
		return "", fmt.Errorf("failed to parse message template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render message template: %w", err)
	}

	return buf.String(), nil
}
