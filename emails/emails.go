// Package emails sends transactional mail over SMTP. Sending is best
// effort: a mail failure is logged and never fails the request that
// triggered it.
package emails

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/andesmotors/storefront-api/models"
)

type smtpConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

func loadSMTPConfig() (*smtpConfig, error) {
	host := os.Getenv("SMTP_HOST")
	user := os.Getenv("SMTP_USER")
	password := os.Getenv("SMTP_PASSWORD")
	if host == "" || user == "" || password == "" {
		return nil, fmt.Errorf("SMTP configuration missing")
	}

	port := 587
	if p := os.Getenv("SMTP_PORT"); p != "" {
		parsed, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid SMTP_PORT: %v", err)
		}
		port = parsed
	}

	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = user
	}
	return &smtpConfig{Host: host, Port: port, User: user, Password: password, From: from}, nil
}

// SendOrderConfirmation mails the buyer a summary of a paid order.
func SendOrderConfirmation(order *models.Order) error {
	cfg, err := loadSMTPConfig()
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", cfg.From)
	m.SetHeader("To", order.Email)
	m.SetHeader("Subject", fmt.Sprintf("Order confirmation %s", order.BuyOrder))
	m.SetBody("text/html", orderConfirmationBody(order))

	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	return d.DialAndSend(m)
}

// SendOrderConfirmationAsync sends the confirmation in the background.
func SendOrderConfirmationAsync(order *models.Order) {
	go func() {
		if err := SendOrderConfirmation(order); err != nil {
			log.Printf("❌ Failed to send confirmation for order %s: %v", order.BuyOrder, err)
			return
		}
		log.Printf("✅ Confirmation sent for order %s to %s", order.BuyOrder, order.Email)
	}()
}

func orderConfirmationBody(order *models.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>Thank you for your purchase, %s!</h2>", order.FullName)
	fmt.Fprintf(&b, "<p>Your order <strong>%s</strong> has been confirmed.</p>", order.BuyOrder)

	b.WriteString("<table border='1' cellpadding='6' cellspacing='0'><tr><th>Product</th><th>Qty</th><th>Unit price</th><th>Total</th></tr>")
	for _, item := range order.Items {
		name := fmt.Sprintf("#%d", item.ProductID)
		if item.Product != nil {
			name = item.Product.Name
		}
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%d</td><td>%s</td><td>%s</td></tr>",
			name, item.Quantity, item.UnitPrice.StringFixed(0), item.Total().StringFixed(0))
	}
	b.WriteString("</table>")

	if order.CouponDiscount.IsPositive() {
		fmt.Fprintf(&b, "<p>Subtotal: %s<br>Discount: -%s</p>",
			order.AmountBeforeDiscount.StringFixed(0), order.CouponDiscount.StringFixed(0))
	}
	fmt.Fprintf(&b, "<p><strong>Total paid: %s</strong></p>", order.AmountPay.StringFixed(0))

	if order.HasInternationalItems {
		b.WriteString("<p>Some items in your order ship from abroad and may take longer to arrive.</p>")
	}
	fmt.Fprintf(&b, "<p>Shipping to:<br>%s</p>", strings.ReplaceAll(order.ShippingAddress, "\n", "<br>"))
	return b.String()
}
