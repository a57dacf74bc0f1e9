package orgs

import (
	"net/http"

	"buildtactical/database"
	"buildtactical/internal/domain/identity"
	"buildtactical/internal/domain/orgs"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func mustUserID(c *gin.Context) (uint, bool) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, false
	}
	return userID, true
}

// GET /organizations — the directory. Private organizations are listed
// only for their own members.
func ListOrganizations(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	memberOf, err := orgs.OrgIDsForUser(database.DB, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load memberships"})
		return
	}

	var list []orgs.Organization
	q := database.DB.Order("name ASC")
	if len(memberOf) > 0 {
		q = q.Where("is_private = ? OR id IN ?", false, memberOf)
	} else {
		q = q.Where("is_private = ?", false)
	}
	if err := q.Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load organizations"})
		return
	}

	c.JSON(http.StatusOK, list)
}

func GetOrganization(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var org orgs.Organization
	if err := database.DB.First(&org, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
		return
	}

	if org.IsPrivate {
		var n int64
		database.DB.Model(&orgs.Member{}).
			Where("organization_id = ? AND user_id = ?", org.ID, userID).
			Count(&n)
		if n == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
			return
		}
	}

	var members []orgs.Member
	if err := database.DB.Preload("User").
		Where("organization_id = ?", org.ID).Find(&members).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load members"})
		return
	}

	type memberDTO struct {
		UserID   uint   `json:"user_id"`
		FullName string `json:"full_name"`
		Email    string `json:"email"`
		Role     string `json:"role"`
	}
	out := make([]memberDTO, 0, len(members))
	for _, m := range members {
		out = append(out, memberDTO{
			UserID:   m.UserID,
			FullName: m.User.FullName,
			Email:    m.User.Email,
			Role:     string(m.User.RoleTag()),
		})
	}

	c.JSON(http.StatusOK, gin.H{"organization": org, "members": out})
}

// POST /organizations — Org Owners only. The creator becomes the first
// member.
func CreateOrganization(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	role := identity.ParseRole(c.GetString("role"))
	if role != identity.RoleOrgOwner && role != identity.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only organization owners can create organizations"})
		return
	}

	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
		IsPrivate   bool   `json:"is_private"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	org := orgs.Organization{
		Name:        req.Name,
		Description: req.Description,
		IsPrivate:   req.IsPrivate,
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&org).Error; err != nil {
			return err
		}
		return tx.Create(&orgs.Member{OrganizationID: org.ID, UserID: userID}).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create organization"})
		return
	}

	c.JSON(http.StatusCreated, org)
}

func UpdateOrganization(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var org orgs.Organization
	if err := database.DB.First(&org, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
		return
	}

	if !isMember(org.ID, userID) && identity.ParseRole(c.GetString("role")) != identity.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		IsPrivate   *bool   `json:"is_private"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != nil {
		org.Name = *req.Name
	}
	if req.Description != nil {
		org.Description = *req.Description
	}
	if req.IsPrivate != nil {
		org.IsPrivate = *req.IsPrivate
	}

	if err := database.DB.Save(&org).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update organization"})
		return
	}

	c.JSON(http.StatusOK, org)
}

// DELETE /organizations/:id — members (or admins) may dissolve the
// organization; memberships cascade, tagged proposals keep their tag.
func DeleteOrganization(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var org orgs.Organization
	if err := database.DB.First(&org, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
		return
	}

	if !isMember(org.ID, userID) && identity.ParseRole(c.GetString("role")) != identity.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("organization_id = ?", org.ID).Delete(&orgs.Member{}).Error; err != nil {
			return err
		}
		return tx.Delete(&org).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete organization"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Organization deleted"})
}

// POST /organizations/:id/members — add a member by email.
func AddMember(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var org orgs.Organization
	if err := database.DB.First(&org, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
		return
	}

	if !isMember(org.ID, userID) && identity.ParseRole(c.GetString("role")) != identity.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user identity.User
	if err := database.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	member := orgs.Member{OrganizationID: org.ID, UserID: user.ID}
	if err := database.DB.Create(&member).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "User is already a member"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Member added"})
}

// DELETE /organizations/:id/members/me — leave the organization.
func LeaveOrganization(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	res := database.DB.
		Where("organization_id = ? AND user_id = ?", c.Param("id"), userID).
		Delete(&orgs.Member{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to leave organization"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not a member"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Left organization"})
}

func isMember(orgID, userID uint) bool {
	var n int64
	database.DB.Model(&orgs.Member{}).
		Where("organization_id = ? AND user_id = ?", orgID, userID).
		Count(&n)
	return n > 0
}
