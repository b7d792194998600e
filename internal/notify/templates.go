package notify

import (
	"html/template"

	"github.com/muze-cafe/api/internal/service"
)

type emailData struct {
	CafeName string
	Order    service.OrderView
}

var funcs = template.FuncMap{
	"pickup": PickupLabel,
}

var confirmationTmpl = template.Must(template.New("order_confirmed").Funcs(funcs).Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1.0"></head>
<body style="font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; background-color: #FFF8E7; margin: 0; padding: 24px;">
  <div style="max-width: 600px; margin: 0 auto; background: #FFFDF8; border-radius: 16px; overflow: hidden;">
    <div style="background: #2D2014; padding: 32px; text-align: center;">
      <h1 style="margin: 0 0 8px 0; color: #FFFDF8;">{{.CafeName}}</h1>
      <p style="margin: 0; color: #F5B82E; text-transform: uppercase; letter-spacing: 2px;">Order Confirmed</p>
    </div>
    <div style="background: #F5B82E; padding: 24px; text-align: center;">
      <p style="margin: 0 0 8px 0; color: #2D2014; font-size: 12px; text-transform: uppercase;">Your Pickup Number</p>
      <p style="margin: 0; font-size: 56px; font-weight: 800; color: #2D2014;">#{{pickup .Order.PickupNumber}}</p>
    </div>
    <div style="padding: 24px 32px;">
      <p>Hi <strong>{{.Order.CustomerName}}</strong>,<br>Thank you for your order! We're preparing it with care.</p>
      <table style="width: 100%; border-collapse: collapse;">
        {{range .Order.Items}}
        <tr>
          <td style="padding: 12px; border-bottom: 1px solid #E8E0D5;">
            <strong>{{.Quantity}}x {{.ItemName}}</strong>
            {{if .Modifiers}}<br><span style="color: #A85A32; font-size: 13px;">{{.Modifiers}}</span>{{end}}
            {{if .SpecialInstructions}}<br><span style="font-size: 13px; font-style: italic;">Note: {{.SpecialInstructions}}</span>{{end}}
          </td>
          <td style="padding: 12px; border-bottom: 1px solid #E8E0D5; text-align: right;">${{.TotalPrice}}</td>
        </tr>
        {{end}}
        <tr><td style="padding: 6px 12px;">Subtotal</td><td style="padding: 6px 12px; text-align: right;">${{.Order.Subtotal}}</td></tr>
        <tr><td style="padding: 6px 12px;">Tax</td><td style="padding: 6px 12px; text-align: right;">${{.Order.Tax}}</td></tr>
        <tr><td style="padding: 12px; font-weight: 700;">Total</td><td style="padding: 12px; text-align: right; font-weight: 700;">${{.Order.Total}}</td></tr>
      </table>
    </div>
    <div style="background: #2D2014; padding: 24px; text-align: center; color: #F5B82E;">We'll notify you when your order is ready!</div>
  </div>
</body>
</html>
`))

var readyTmpl = template.Must(template.New("order_ready").Funcs(funcs).Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1.0"></head>
<body style="font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; background-color: #FFF8E7; margin: 0; padding: 24px;">
  <div style="max-width: 600px; margin: 0 auto; background: #FFFDF8; border-radius: 16px; overflow: hidden;">
    <div style="background: #A85A32; padding: 32px; text-align: center;">
      <h1 style="margin: 0 0 8px 0; color: #FFFDF8;">{{.CafeName}}</h1>
      <p style="margin: 0; color: #F5B82E; text-transform: uppercase; letter-spacing: 2px;">Order Ready!</p>
    </div>
    <div style="background: #F5B82E; padding: 40px; text-align: center;">
      <p style="margin: 0 0 12px 0; color: #2D2014; font-size: 14px; text-transform: uppercase;">Pickup Number</p>
      <p style="margin: 0; font-size: 72px; font-weight: 800; color: #2D2014;">#{{pickup .Order.PickupNumber}}</p>
    </div>
    <div style="padding: 32px; text-align: center;">
      <p style="font-size: 22px; font-weight: 600;">Hi {{.Order.CustomerName}}!</p>
      <p>Great news! Your order is ready and waiting for you at the counter.</p>
      <p>Please show your pickup number when collecting your order.</p>
    </div>
    <div style="background: #2D2014; padding: 24px; text-align: center; color: #F5B82E;">Thank you for choosing us!</div>
  </div>
</body>
</html>
`))
