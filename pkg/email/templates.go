package email

import (
	"bytes"
	"html/template"
	"log"
)

// TemplateManager holds the parsed email templates.
type TemplateManager struct {
	ActivationTmpl   *template.Template
	QuoteTmpl        *template.Template
	MissionAssignedT *template.Template
}

// NewTemplateManager parses all email templates at startup.
func NewTemplateManager() (*TemplateManager, error) {
	activationTmpl, err := template.New("activation").Parse(accountActivTemplate)
	if err != nil {
		return nil, err
	}

	quoteTmpl, err := template.New("quoteConfirmation").Parse(quoteConfirmationTemplate)
	if err != nil {
		return nil, err
	}

	missionAssignedTmpl, err := template.New("missionAssigned").Parse(missionAssignedTemplate)
	if err != nil {
		return nil, err
	}

	log.Println("Email templates parsed successfully.")
	return &TemplateManager{
		ActivationTmpl:   activationTmpl,
		QuoteTmpl:        quoteTmpl,
		MissionAssignedT: missionAssignedTmpl,
	}, nil
}

// TemplateData holds the dynamic data for an email template.
type TemplateData struct {
	Name      string
	Link      string
	Reference string // quote number, e.g. DEV-000123
	Amount    string // formatted total, TTC
	Detail    string // free-form line, e.g. pickup -> delivery
}

// GenerateActivateAccountEmailHTML executes the activation template with the provided data.
func (tm *TemplateManager) GenerateActivateAccountEmailHTML(data TemplateData) (string, error) {
	var body bytes.Buffer
	if err := tm.ActivationTmpl.Execute(&body, data); err != nil {
		return "", err
	}
	return body.String(), nil
}

// GenerateQuoteConfirmationEmailHTML executes the quote confirmation template.
func (tm *TemplateManager) GenerateQuoteConfirmationEmailHTML(data TemplateData) (string, error) {
	var body bytes.Buffer
	if err := tm.QuoteTmpl.Execute(&body, data); err != nil {
		return "", err
	}
	return body.String(), nil
}

// GenerateMissionAssignedEmailHTML executes the driver assignment template.
func (tm *TemplateManager) GenerateMissionAssignedEmailHTML(data TemplateData) (string, error) {
	var body bytes.Buffer
	if err := tm.MissionAssignedT.Execute(&body, data); err != nil {
		return "", err
	}
	return body.String(), nil
}

// --- HTML Template Definitions ---

const accountActivTemplate = `
<!DOCTYPE html>
<html>
<head>
	<title>Activez votre compte</title>
</head>
<body style="font-family: Arial, sans-serif;">
	<h2>Bienvenue, {{.Name}} !</h2>
	<p>Merci de votre inscription. Cliquez sur le lien ci-dessous pour activer votre compte :</p>
	<p><a href="{{.Link}}">Activer mon compte</a></p>
	<p>Ce lien expire dans 30 minutes.</p>
	<p>Si vous n'êtes pas à l'origine de cette inscription, ignorez cet email.</p>
</body>
</html>
`

const quoteConfirmationTemplate = `
<!DOCTYPE html>
<html>
<head>
	<title>Votre devis de convoyage</title>
</head>
<body style="font-family: Arial, sans-serif;">
	<h2>Bonjour {{.Name}},</h2>
	<p>Votre devis <strong>{{.Reference}}</strong> a bien été enregistré.</p>
	<p>Montant total : <strong>{{.Amount}} € TTC</strong></p>
	<p>Vous pouvez le consulter et l'accepter depuis votre espace client :</p>
	<p><a href="{{.Link}}">Voir mon devis</a></p>
</body>
</html>
`

const missionAssignedTemplate = `
<!DOCTYPE html>
<html>
<head>
	<title>Nouvelle mission</title>
</head>
<body style="font-family: Arial, sans-serif;">
	<h2>Bonjour {{.Name}},</h2>
	<p>Une nouvelle mission de convoyage vous a été attribuée : <strong>{{.Reference}}</strong>.</p>
	<p>{{.Detail}}</p>
	<p><a href="{{.Link}}">Voir la mission</a></p>
</body>
</html>
`
