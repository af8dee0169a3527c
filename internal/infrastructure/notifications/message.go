package notifications

import (
	"fmt"
	"strings"

	"github.com/zatekoja/dentisalud-funnel/internal/domain/entities"
)

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

// leadMessage renders the short push text shared by chat channels
func leadMessage(lead *entities.Lead) string {
	return fmt.Sprintf("🔔 *NUEVO LEAD DKV*\n\n👤: %s\n📞: `%s`\n📍: %s",
		lead.FullName, lead.Phone, orNA(lead.ZipCode))
}
