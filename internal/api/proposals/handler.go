package proposals

import (
	"net/http"

	"buildtactical/database"
	"buildtactical/internal/domain/identity"
	"buildtactical/internal/domain/orgs"
	"buildtactical/internal/domain/proposals"

	"github.com/gin-gonic/gin"
)

func mustUserID(c *gin.Context) (uint, bool) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, false
	}
	return userID, true
}

type ProposalDTO struct {
	ID             uint    `json:"id"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	BudgetUSD      float64 `json:"budget_usd"`
	Status         string  `json:"status"`
	SenderID       uint    `json:"sender_id"`
	ReceiverID     uint    `json:"receiver_id"`
	OrganizationID *uint   `json:"organization_id,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

// GET /project-proposals — the partitioned listing. Buckets follow the
// caller's role; admins get a single unsplit list.
func ListProposals(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	role := identity.ParseRole(c.GetString("role"))

	var list []proposals.Proposal
	if err := database.DB.Order("created_at DESC").Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load proposals"})
		return
	}

	callerOrgs := map[uint]bool{}
	orgMembers := map[uint]bool{}
	if role == identity.RoleOrgOwner {
		ids, err := orgs.OrgIDsForUser(database.DB, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load memberships"})
			return
		}
		for _, id := range ids {
			callerOrgs[id] = true
		}
		orgMembers, err = orgs.MemberUserIDs(database.DB, ids)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load memberships"})
			return
		}
	}

	buckets := proposals.Partition(userID, role, callerOrgs, orgMembers, list)

	if role == identity.RoleAdmin {
		c.JSON(http.StatusOK, gin.H{"all": toDTOs(buckets.All)})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"outgoing": toDTOs(buckets.Outgoing),
		"incoming": toDTOs(buckets.Incoming),
	})
}

// POST /project-proposals
func CreateProposal(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req struct {
		Title          string  `json:"title" binding:"required"`
		Description    string  `json:"description"`
		BudgetUSD      float64 `json:"budget_usd" binding:"required,gt=0"`
		ReceiverID     uint    `json:"receiver_id" binding:"required"`
		OrganizationID *uint   `json:"organization_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.ReceiverID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot send a proposal to yourself"})
		return
	}

	var receiver identity.User
	if err := database.DB.First(&receiver, req.ReceiverID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Receiver not found"})
		return
	}

	if req.OrganizationID != nil {
		var org orgs.Organization
		if err := database.DB.First(&org, *req.OrganizationID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
			return
		}
	}

	p := proposals.Proposal{
		Title:          req.Title,
		Description:    req.Description,
		BudgetUSD:      req.BudgetUSD,
		Status:         proposals.StatusUnderReview,
		SenderID:       userID,
		ReceiverID:     req.ReceiverID,
		OrganizationID: req.OrganizationID,
	}
	if err := database.DB.Create(&p).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create proposal"})
		return
	}

	c.JSON(http.StatusCreated, toDTO(p))
}

// POST /project-proposals/:id/decision — approve or deny. Only the
// receiver, an owner of the tagged organization, or an admin may decide,
// and only while the proposal is still under review.
func DecideProposal(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	role := identity.ParseRole(c.GetString("role"))

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status := proposals.Status(req.Status)
	if status != proposals.StatusApproved && status != proposals.StatusDenied {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status must be Approved or Denied"})
		return
	}

	var p proposals.Proposal
	if err := database.DB.First(&p, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Proposal not found"})
		return
	}

	callerOrgs := map[uint]bool{}
	if role == identity.RoleOrgOwner {
		ids, err := orgs.OrgIDsForUser(database.DB, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load memberships"})
			return
		}
		for _, id := range ids {
			callerOrgs[id] = true
		}
	}

	if !proposals.CanDecide(userID, role, callerOrgs, p) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	if p.Status != proposals.StatusUnderReview {
		c.JSON(http.StatusConflict, gin.H{"error": "Proposal has already been decided"})
		return
	}

	p.Status = status
	if err := database.DB.Save(&p).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update proposal"})
		return
	}

	c.JSON(http.StatusOK, toDTO(p))
}

func toDTO(p proposals.Proposal) ProposalDTO {
	return ProposalDTO{
		ID:             p.ID,
		Title:          p.Title,
		Description:    p.Description,
		BudgetUSD:      p.BudgetUSD,
		Status:         string(p.Status),
		SenderID:       p.SenderID,
		ReceiverID:     p.ReceiverID,
		OrganizationID: p.OrganizationID,
		CreatedAt:      p.CreatedAt.Format("2006-01-02 15:04"),
	}
}

func toDTOs(list []proposals.Proposal) []ProposalDTO {
	out := make([]ProposalDTO, 0, len(list))
	for _, p := range list {
		out = append(out, toDTO(p))
	}
	return out
}
