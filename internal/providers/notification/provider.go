package notification

import (
	"context"
	"fmt"

	"github.com/gen2brain/beeep"

	"github.com/vesselhq/vessel/internal/capability"
)

// Notifier abstracts desktop notification delivery. The real implementation
// delegates to the platform notification daemon via beeep; tests stub it.
type Notifier interface {
	Notify(title, body, icon string) error
	Alert(title, body, icon string) error
	Beep() error
}

type beeepNotifier struct{}

func (beeepNotifier) Notify(title, body, icon string) error {
	return beeep.Notify(title, body, icon)
}

func (beeepNotifier) Alert(title, body, icon string) error {
	return beeep.Alert(title, body, icon)
}

func (beeepNotifier) Beep() error {
	return beeep.Beep(beeep.DefaultFreq, beeep.DefaultDuration)
}

// Provider exposes desktop notifications to the application.
type Provider struct {
	notifier    Notifier
	appName     string
	defaultIcon string
	sent        func()
}

// NewProvider creates a notification provider. defaultIcon is the packaged
// application icon used when a notification does not carry its own.
func NewProvider(appName, defaultIcon string) *Provider {
	return &Provider{
		notifier:    beeepNotifier{},
		appName:     appName,
		defaultIcon: defaultIcon,
	}
}

// WithNotifier swaps the delivery backend.
func (p *Provider) WithNotifier(n Notifier) *Provider {
	p.notifier = n
	return p
}

// OnSent registers a hook fired after each delivered notification.
func (p *Provider) OnSent(fn func()) {
	p.sent = fn
}

// Definition returns capability metadata.
func (p *Provider) Definition() capability.Service {
	return capability.Service{
		ID:          "notification",
		Name:        "Notifications",
		Description: "Desktop notifications for the application",
		Category:    capability.CategoryNotification,
		Capabilities: []string{
			"send",
			"alert",
			"permission",
		},
		Tools: []capability.Tool{
			{
				ID:          "notification.send",
				Name:        "Send Notification",
				Description: "Deliver a desktop notification",
				Parameters: []capability.Parameter{
					{Name: "title", Type: "string", Description: "Notification title", Required: true},
					{Name: "body", Type: "string", Description: "Notification body", Required: false},
					{Name: "icon", Type: "string", Description: "Icon path override", Required: false},
				},
				Returns: "boolean",
			},
			{
				ID:          "notification.alert",
				Name:        "Send Alert",
				Description: "Deliver an urgent notification with sound",
				Parameters: []capability.Parameter{
					{Name: "title", Type: "string", Description: "Alert title", Required: true},
					{Name: "body", Type: "string", Description: "Alert body", Required: false},
				},
				Returns: "boolean",
			},
			{
				ID:          "notification.permission",
				Name:        "Check Permission",
				Description: "Report whether notifications are permitted",
				Parameters:  []capability.Parameter{},
				Returns:     "string",
			},
			{
				ID:          "notification.beep",
				Name:        "Beep",
				Description: "Play the default system beep",
				Parameters:  []capability.Parameter{},
				Returns:     "boolean",
			},
		},
	}
}

// Execute runs a notification operation.
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *capability.Context) (*capability.Result, error) {
	switch toolID {
	case "notification.send":
		return p.send(params, false)
	case "notification.alert":
		return p.send(params, true)
	case "notification.permission":
		// Desktop delivery has no permission prompt; reported for parity
		// with mobile surfaces.
		return capability.Success(map[string]interface{}{"permission": "granted"})
	case "notification.beep":
		if err := p.notifier.Beep(); err != nil {
			return capability.Failure(fmt.Sprintf("beep failed: %v", err))
		}
		return capability.Success(map[string]interface{}{"played": true})
	default:
		return capability.Failure(fmt.Sprintf("unknown tool: %s", toolID))
	}
}

func (p *Provider) send(params map[string]interface{}, urgent bool) (*capability.Result, error) {
	title, ok := params["title"].(string)
	if !ok || title == "" {
		return capability.Failure("title parameter required")
	}
	body, _ := params["body"].(string)

	icon := p.defaultIcon
	if override, ok := params["icon"].(string); ok && override != "" {
		icon = override
	}

	var err error
	if urgent {
		err = p.notifier.Alert(title, body, icon)
	} else {
		err = p.notifier.Notify(title, body, icon)
	}
	if err != nil {
		return capability.Failure(fmt.Sprintf("notification delivery failed: %v", err))
	}

	if p.sent != nil {
		p.sent()
	}
	return capability.Success(map[string]interface{}{"delivered": true, "title": title})
}
