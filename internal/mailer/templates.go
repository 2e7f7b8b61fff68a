package mailer

import (
	"html/template"
	"strings"
)

const (
	welcomeSubject = "🚀 ¡Bienvenido a la revolución de KUBO AI!"
	launchSubject  = "🎉 ¡KUBO AI ya está disponible! Tu acceso exclusivo te espera"
)

var welcomeTemplate = template.Must(template.New("welcome").Parse(`<!DOCTYPE html>
<html lang="es">
<head><meta charset="UTF-8"><title>Bienvenido a KUBO AI</title></head>
<body style="font-family:-apple-system,'Segoe UI',Roboto,sans-serif;color:#e5e5e5;background:#000;max-width:600px;margin:0 auto;padding:20px;">
  <div style="background:linear-gradient(135deg,#1a1a1a 0%,#2d2d2d 100%);border-radius:20px;padding:40px;border:1px solid #333;">
    <h1 style="text-align:center;color:#3b82f6;">KUBO AI</h1>
    <h2>¡Hola {{.Name}}! 👋</h2>
    <p>¡Bienvenido a la revolución del desarrollo de software! Te has unido a un grupo
    exclusivo de visionarios que serán los primeros en experimentar el futuro de la programación.</p>
    <p>Como miembro de nuestra lista de espera, serás notificado <strong>inmediatamente</strong>
    cuando KUBO AI esté disponible, con acceso prioritario y beneficios exclusivos para early adopters.</p>
    <p style="text-align:center;"><a href="https://kubo-ai-beta.vercel.app" style="display:inline-block;background:linear-gradient(135deg,#3b82f6,#8b5cf6);color:#fff;padding:15px 30px;text-decoration:none;border-radius:10px;font-weight:bold;">Visitar KUBO AI</a></p>
    <p style="color:#666;font-size:12px;text-align:center;">Recibiste este email porque te registraste en la lista de espera de KUBO AI.</p>
  </div>
</body>
</html>`))

var launchTemplate = template.Must(template.New("launch").Parse(`<!DOCTYPE html>
<html lang="es">
<head><meta charset="UTF-8"><title>¡KUBO AI ya está aquí!</title></head>
<body style="font-family:-apple-system,'Segoe UI',Roboto,sans-serif;color:#e5e5e5;background:#000;max-width:600px;margin:0 auto;padding:20px;">
  <div style="background:linear-gradient(135deg,#1a1a1a 0%,#2d2d2d 100%);border-radius:20px;padding:40px;border:1px solid #333;">
    <h1 style="text-align:center;color:#3b82f6;">KUBO AI</h1>
    <h2 style="text-align:center;color:#10b981;">¡YA ESTÁ DISPONIBLE!</h2>
    <h2>¡{{.Name}}, el momento ha llegado! 🚀</h2>
    <p>Después de meses de desarrollo intensivo, KUBO AI está oficialmente disponible y
    listo para revolucionar tu forma de desarrollar software.</p>
    <p>Como miembro de nuestra lista de espera tienes <strong>acceso prioritario</strong>
    y beneficios exclusivos que no están disponibles para el público general.</p>
    <p><strong>Tu código de acceso exclusivo:</strong>
    <code style="background:#333;padding:5px 10px;border-radius:5px;color:#3b82f6;">EARLY-{{.AccessCode}}-2025</code></p>
    <p style="text-align:center;"><a href="https://kubo-ai-beta.vercel.app" style="display:inline-block;background:linear-gradient(135deg,#10b981,#3b82f6);color:#fff;padding:20px 40px;text-decoration:none;border-radius:15px;font-weight:bold;font-size:18px;">🚀 ACCEDER A KUBO AI AHORA</a></p>
    <p style="color:#666;font-size:12px;text-align:center;">Este email fue enviado a los miembros de la lista de espera de KUBO AI.</p>
  </div>
</body>
</html>`))

type templateData struct {
	Name       string
	AccessCode string
}

func renderWelcomeEmail(name string) (string, error) {
	var sb strings.Builder
	if err := welcomeTemplate.Execute(&sb, templateData{Name: name}); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func renderLaunchEmail(name string) (string, error) {
	var sb strings.Builder
	data := templateData{
		Name:       name,
		AccessCode: accessCodeFromName(name),
	}
	if err := launchTemplate.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func accessCodeFromName(name string) string {
	return strings.ToUpper(strings.ReplaceAll(name, " ", ""))
}
