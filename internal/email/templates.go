package email

import "html/template"

type pageData struct {
	Brand  string
	Title  string
	Link   string
	Expiry string
	Year   int
}

const layout = `{{define "layout"}}<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}}</title>
</head>
<body style="margin:0;padding:0;font-family:'Segoe UI',Tahoma,Geneva,Verdana,sans-serif;background-color:#f7f7f7;color:#333333;">
  <table role="presentation" cellspacing="0" cellpadding="0" border="0" align="center" width="100%" style="max-width:600px;margin:0 auto;background-color:#ffffff;border-radius:8px;">
    <tr>
      <td style="padding:30px 0;text-align:center;background-color:#ff0050;">
        <h1 style="color:#ffffff;margin:0;font-size:28px;font-weight:600;">{{.Brand}}</h1>
      </td>
    </tr>
    <tr>
      <td style="padding:40px 30px;">
        <h2 style="margin-top:0;font-size:24px;">{{.Title}}</h2>
        {{template "content" .}}
      </td>
    </tr>
    <tr>
      <td style="padding:20px 30px;background-color:#f9f9f9;text-align:center;font-size:12px;color:#666666;">
        <p>&copy; {{.Year}} {{.Brand}}. All rights reserved.</p>
        <p>Please do not reply to this email.</p>
      </td>
    </tr>
  </table>
</body>
</html>{{end}}`

const button = `{{define "button"}}<div style="text-align:center;margin:30px 0;">
  <a href="{{.Link}}" style="display:inline-block;background-color:#ff0050;color:white;text-decoration:none;padding:14px 30px;border-radius:4px;font-weight:600;font-size:16px;">{{.Label}}</a>
</div>{{end}}`

const fallback = `{{define "fallback"}}<div style="margin-top:30px;padding-top:20px;border-top:1px solid #eeeeee;font-size:14px;color:#666666;">
  <p>If the button above doesn't work, copy and paste this URL into your browser:</p>
  <p style="word-break:break-all;font-size:12px;color:#888888;">{{.Link}}</p>
</div>{{end}}`

var (
	verificationTmpl = mustPage("verification", `{{define "content"}}
<p style="font-size:16px;line-height:1.6;">Thank you for joining {{.Brand}}. To get started, please verify your email address.</p>
{{template "button" (btn .Link "Verify Email")}}
<p style="font-size:14px;color:#666666;">If you did not request this verification, please ignore this email.</p>
<p style="font-size:14px;color:#666666;">This link will expire in {{.Expiry}}.</p>
{{template "fallback" .}}
{{end}}`)

	resetTmpl = mustPage("reset", `{{define "content"}}
<p style="font-size:16px;line-height:1.6;">We received a request to reset your password. Click the button below to create a new password.</p>
{{template "button" (btn .Link "Reset Password")}}
<p style="font-size:14px;color:#666666;">If you did not request a password reset, please ignore this email or contact support if you have concerns.</p>
<p style="font-size:14px;color:#666666;">This link will expire in {{.Expiry}}.</p>
{{template "fallback" .}}
{{end}}`)

	changedTmpl = mustPage("changed", `{{define "content"}}
<p style="font-size:16px;line-height:1.6;">Your password has been changed successfully.</p>
<p style="font-size:14px;color:#666666;">If you did not request this change, please contact our support team immediately.</p>
{{template "button" (btn .Link "Go to Login")}}
{{end}}`)
)

type buttonData struct {
	Link  string
	Label string
}

func mustPage(name, content string) *template.Template {
	funcs := template.FuncMap{
		"btn": func(link, label string) buttonData { return buttonData{Link: link, Label: label} },
	}
	t := template.Must(template.New(name).Funcs(funcs).Parse(`{{template "layout" .}}`))
	for _, part := range []string{layout, button, fallback, content} {
		template.Must(t.Parse(part))
	}
	return t
}
