package reports

import (
	"bytes"
	"fmt"
	"net/http"

	"buildtactical/database"
	"buildtactical/internal/domain/identity"
	"buildtactical/internal/domain/orgs"
	"buildtactical/internal/domain/proposals"

	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"
)

// ProposalPDF renders a single proposal as a downloadable PDF. Visible to
// the sender, the receiver, an owner of the tagged organization, or an
// admin.
func ProposalPDF(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	role := identity.ParseRole(c.GetString("role"))

	var p proposals.Proposal
	if err := database.DB.Preload("Sender").Preload("Receiver").Preload("Organization").
		First(&p, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Proposal not found"})
		return
	}

	if !canView(userID, role, p) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	pdf, err := renderProposal(p)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render PDF"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=proposal-%d.pdf", p.ID))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func canView(userID uint, role identity.Role, p proposals.Proposal) bool {
	if role == identity.RoleAdmin || p.SenderID == userID || p.ReceiverID == userID {
		return true
	}
	if role == identity.RoleOrgOwner && p.OrganizationID != nil {
		var count int64
		err := database.DB.Model(&orgs.Member{}).
			Where("organization_id = ? AND user_id = ?", *p.OrganizationID, userID).
			Count(&count).Error
		return err == nil && count > 0
	}
	return false
}

func renderProposal(p proposals.Proposal) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Proposal #%d", p.ID), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, fmt.Sprintf("Project Proposal #%d", p.ID), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Status: %s", p.Status), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Submitted: %s", p.CreatedAt.Format("January 2, 2006")), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	row := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(40, 7, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 7, value, "", "L", false)
	}

	row("Title", p.Title)
	row("From", fmt.Sprintf("%s <%s>", p.Sender.FullName, p.Sender.Email))
	row("To", fmt.Sprintf("%s <%s>", p.Receiver.FullName, p.Receiver.Email))
	if p.Organization != nil {
		row("Organization", p.Organization.Name)
	}
	row("Budget", fmt.Sprintf("$%.2f USD", p.BudgetUSD))
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "Description", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	desc := p.Description
	if desc == "" {
		desc = "(no description provided)"
	}
	pdf.MultiCell(0, 6, desc, "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
