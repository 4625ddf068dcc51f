package services

import (
	"strings"

	"github.com/jinzhu/copier"
	"github.com/yeremiapane/hotel-backoffice/models"
	"github.com/yeremiapane/hotel-backoffice/utils"
)

type UserService struct {
	base
}

type UserInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	Phone    string
	Address  string
}

// UserUpdate holds profile edits. Email is admin-only.
type UserUpdate struct {
	Name    *string
	Email   *string
	Phone   *string
	Address *string
}

type UserFilter struct {
	Role     string
	IsActive *bool
	Search   string
}

func (s *UserService) List(f UserFilter, p utils.Pagination) ([]models.User, int64, error) {
	q := s.db.Model(&models.User{})
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	err := p.Apply(q).Order("name").Find(&users).Error
	return users, total, err
}

// Get lets admins and managers read any account and everyone else only their own.
func (s *UserService) Get(actor Actor, id uint) (*models.User, error) {
	if id != actor.UserID && !actor.HasRole(models.RoleAdmin, models.RoleManager) {
		return nil, forbidden("you can only view your own account")
	}
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

// Create adds an account with any role, typically staff.
func (s *UserService) Create(in UserInput) (*models.User, error) {
	if !models.Contains(models.Roles, in.Role) {
		return nil, validation("unknown role %q", in.Role)
	}
	hashed, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := copier.Copy(&user, &in); err != nil {
		return nil, err
	}
	user.Email = normalizeEmail(in.Email)
	user.Password = hashed
	user.IsActive = true
	if err := s.db.Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, conflict("email %s is already registered", user.Email)
		}
		return nil, err
	}
	utils.InfoLogger.Printf("User created: %s (role=%s)", user.Email, user.Role)
	return &user, nil
}

func (s *UserService) Update(actor Actor, id uint, in UserUpdate) (*models.User, error) {
	if id != actor.UserID && !actor.HasRole(models.RoleAdmin) {
		return nil, forbidden("you can only edit your own account")
	}
	if in.Email != nil && !actor.HasRole(models.RoleAdmin) {
		return nil, forbidden("only an admin can change an email address")
	}
	user, err := s.Get(Actor{Role: models.RoleAdmin}, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		updates["email"] = normalizeEmail(*in.Email)
	}
	if in.Phone != nil {
		updates["phone"] = *in.Phone
	}
	if in.Address != nil {
		updates["address"] = *in.Address
	}
	if len(updates) > 0 {
		if err := s.db.Model(user).Updates(updates).Error; err != nil {
			if isUniqueViolation(err) {
				return nil, conflict("email is already registered")
			}
			return nil, err
		}
	}
	return s.Get(Actor{Role: models.RoleAdmin}, id)
}

func (s *UserService) UpdateRole(actor Actor, id uint, role string) (*models.User, error) {
	if !models.Contains(models.Roles, role) {
		return nil, validation("unknown role %q", role)
	}
	if id == actor.UserID && role != actor.Role {
		return nil, invalidState("you cannot change your own role")
	}
	user, err := s.Get(Actor{Role: models.RoleAdmin}, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(user).Update("role", role).Error; err != nil {
		return nil, err
	}
	user.Role = role
	utils.InfoLogger.Printf("User %s role changed to %s by user %d", user.Email, role, actor.UserID)
	return user, nil
}

func (s *UserService) SetActive(actor Actor, id uint, active bool) (*models.User, error) {
	if id == actor.UserID && !active {
		return nil, invalidState("you cannot deactivate your own account")
	}
	user, err := s.Get(Actor{Role: models.RoleAdmin}, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(user).Update("is_active", active).Error; err != nil {
		return nil, err
	}
	user.IsActive = active
	utils.InfoLogger.Printf("User %s active=%t set by user %d", user.Email, active, actor.UserID)
	return user, nil
}

func (s *UserService) Delete(actor Actor, id uint) error {
	if id == actor.UserID {
		return invalidState("you cannot delete your own account")
	}
	user, err := s.Get(Actor{Role: models.RoleAdmin}, id)
	if err != nil {
		return err
	}
	var refs int64
	if err := s.db.Model(&models.Reservation{}).Where("user_id = ?", id).Count(&refs).Error; err != nil {
		return err
	}
	if refs > 0 {
		return conflict("user %s has reservations; deactivate the account instead", user.Email)
	}
	return s.db.Delete(user).Error
}
