package bootstrap

import (
	"go.uber.org/fx"

	"lgu-facilities/internal/pkg/config"
	"lgu-facilities/internal/pkg/mail"
)

var MailModule = fx.Module("mail",
	fx.Provide(
		func(cfg config.Config) mail.Mailer {
			return mail.NewMailer(cfg.SMTP)
		},
	),
)
