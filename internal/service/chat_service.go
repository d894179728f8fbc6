package service

import (
	"io"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/section-portal-api/internal/models"
	"github.com/noah-isme/section-portal-api/internal/repository"
	appErrors "github.com/noah-isme/section-portal-api/pkg/errors"
	"github.com/noah-isme/section-portal-api/pkg/storage"
)

// CreateGroupRequest holds payload for creating a chat group.
type CreateGroupRequest struct {
	Name        string                   `json:"name" validate:"required"`
	Bio         string                   `json:"bio"`
	Members     []models.Member          `json:"members"`
	Permissions *models.GroupPermissions `json:"permissions"`
}

// UpdateGroupRequest edits group metadata, membership or permissions. Nil
// fields keep their stored value.
type UpdateGroupRequest struct {
	Name        string                   `json:"name"`
	Bio         string                   `json:"bio"`
	Members     []models.Member          `json:"members"`
	Permissions *models.GroupPermissions `json:"permissions"`
}

// SendMessageRequest is one outgoing message.
type SendMessageRequest struct {
	Text        string              `json:"text"`
	Attachments []models.Attachment `json:"attachments"`
}

// ChatService manages groups, the posting permission evaluator and the 1:1
// student/teacher threads.
type ChatService struct {
	store     *repository.Store
	guard     *Guard
	blobs     *storage.BlobStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewChatService constructs the chat service.
func NewChatService(store *repository.Store, guard *Guard, blobs *storage.BlobStore, validate *validator.Validate, logger *zap.Logger) *ChatService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{store: store, guard: guard, blobs: blobs, validator: validate, logger: logger}
}

// ListGroups returns the groups visible to the actor: admins see all of the
// scope's groups, students only those they are members of. The section-wide
// group is refreshed from the roster first.
func (s *ChatService) ListGroups(actor models.Actor, scope models.Scope) ([]models.Group, error) {
	if err := s.requireScopeMember(actor, scope); err != nil {
		return nil, err
	}
	doc, err := s.refreshGroupAll(scope)
	if err != nil {
		return nil, err
	}
	groups := make([]models.Group, 0, len(doc.Groups))
	for _, g := range doc.Groups {
		if actor.Role == models.RoleStudent && !g.HasMember(models.MemberTypeStudent, actor.ID) {
			continue
		}
		g.MemberCount = len(g.Members)
		groups = append(groups, g)
	}
	sortGroups(groups)
	return groups, nil
}

// RefreshSectionGroup rebuilds the section-wide group from the roster on
// demand and returns it.
func (s *ChatService) RefreshSectionGroup(actor models.Actor, scope models.Scope) (*models.Group, error) {
	if err := s.guard.RequireAdminScope(actor, scope); err != nil {
		return nil, err
	}
	doc, err := s.refreshGroupAll(scope)
	if err != nil {
		return nil, err
	}
	group := doc.Groups[models.GroupAllID]
	group.MemberCount = len(group.Members)
	return &group, nil
}

// CreateGroup adds a chat group. The creator is always a member.
func (s *ChatService) CreateGroup(actor models.Actor, scope models.Scope, req CreateGroupRequest) (*models.Group, error) {
	if err := s.guard.RequireAdminScope(actor, scope); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid group payload")
	}
	perms := models.GroupPermissions{WhoCanChat: models.ChatAll}
	if req.Permissions != nil {
		perms = *req.Permissions
	}
	if perms.WhoCanChat == "" {
		perms.WhoCanChat = models.ChatAll
	}
	members := req.Members
	if members == nil {
		members = []models.Member{}
	}
	created := models.Group{
		ID:          shortID("group"),
		Name:        req.Name,
		Bio:         req.Bio,
		Members:     members,
		Permissions: perms,
		CreatedAt:   nowStamp(),
	}
	if !created.HasMember(actor.SenderType(), actor.ID) {
		created.Members = append(created.Members, models.Member{
			Type: actor.SenderType(),
			ID:   actor.ID,
			Name: actor.Name,
		})
	}
	_, err := s.store.Chat.Update(scope, func(doc *models.ChatDoc) error {
		doc.Groups[created.ID] = created
		doc.Messages[created.ID] = []models.Message{}
		return nil
	})
	if err != nil {
		return nil, err
	}
	created.MemberCount = len(created.Members)
	return &created, nil
}

// UpdateGroup edits group metadata. The section-wide group's member list is
// roster-derived and cannot be edited by hand.
func (s *ChatService) UpdateGroup(actor models.Actor, scope models.Scope, groupID string, req UpdateGroupRequest) (*models.Group, error) {
	if err := s.guard.RequireAdminScope(actor, scope); err != nil {
		return nil, err
	}
	var updated *models.Group
	_, err := s.store.Chat.Update(scope, func(doc *models.ChatDoc) error {
		group, ok := doc.Groups[groupID]
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "group not found")
		}
		applyIfSet(&group.Name, req.Name)
		applyIfSet(&group.Bio, req.Bio)
		if req.Members != nil {
			if groupID == models.GroupAllID {
				return appErrors.Clone(appErrors.ErrValidation, "section group membership is derived from the roster")
			}
			group.Members = req.Members
		}
		if req.Permissions != nil {
			group.Permissions = *req.Permissions
		}
		doc.Groups[groupID] = group
		copied := group
		updated = &copied
		return nil
	})
	if err != nil {
		return nil, err
	}
	updated.MemberCount = len(updated.Members)
	return updated, nil
}

// DeleteGroup removes a group and its message log. The section-wide group
// cannot be deleted.
func (s *ChatService) DeleteGroup(actor models.Actor, scope models.Scope, groupID string) error {
	if err := s.guard.RequireAdminScope(actor, scope); err != nil {
		return err
	}
	if groupID == models.GroupAllID {
		return appErrors.Clone(appErrors.ErrValidation, "the section group cannot be deleted")
	}
	var photo string
	_, err := s.store.Chat.Update(scope, func(doc *models.ChatDoc) error {
		group, ok := doc.Groups[groupID]
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "group not found")
		}
		photo = group.Photo
		delete(doc.Groups, groupID)
		delete(doc.Messages, groupID)
		return nil
	})
	if err != nil {
		return err
	}
	if photo != "" {
		if err := s.blobs.Delete(photo); err != nil {
			s.logger.Warn("failed to delete group photo", zap.String("group", groupID), zap.Error(err))
		}
	}
	return nil
}

// SendMessage posts into a group after evaluating the permission mode. The
// main admin is added to the member list on first post.
func (s *ChatService) SendMessage(actor models.Actor, scope models.Scope, groupID string, req SendMessageRequest) (*models.Message, error) {
	if err := s.requireScopeMember(actor, scope); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Text) == "" && len(req.Attachments) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "message must carry text or attachments")
	}
	if req.Attachments == nil {
		req.Attachments = []models.Attachment{}
	}

	message := models.Message{
		ID:          shortID("msg"),
		From:        models.Sender{Type: actor.SenderType(), ID: actor.ID},
		Text:        req.Text,
		Attachments: req.Attachments,
		TS:          nowStamp(),
	}
	_, err := s.store.Chat.Update(scope, func(doc *models.ChatDoc) error {
		group, ok := doc.Groups[groupID]
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "group not found")
		}
		if actor.Role == models.RoleMainAdmin && !group.HasMember(models.MemberTypeTeacher, models.MainAdminID) {
			group.Members = append(group.Members, models.Member{
				Type: models.MemberTypeTeacher,
				ID:   models.MainAdminID,
				Name: models.MainAdminName,
			})
			doc.Groups[groupID] = group
		}
		if !group.HasMember(actor.SenderType(), actor.ID) {
			return appErrors.Clone(appErrors.ErrForbidden, "you are not a member of this group")
		}
		if !CanSend(group, actor) {
			return appErrors.Clone(appErrors.ErrForbidden, "this group does not allow you to post")
		}
		doc.Messages[groupID] = append(doc.Messages[groupID], message)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// ListMessages returns a group's log, members only.
func (s *ChatService) ListMessages(actor models.Actor, scope models.Scope, groupID string) ([]models.Message, error) {
	if err := s.requireScopeMember(actor, scope); err != nil {
		return nil, err
	}
	var messages []models.Message
	err := s.store.Chat.View(scope, func(doc models.ChatDoc) error {
		group, ok := doc.Groups[groupID]
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "group not found")
		}
		if actor.Role != models.RoleMainAdmin && !group.HasMember(actor.SenderType(), actor.ID) {
			return appErrors.Clone(appErrors.ErrForbidden, "you are not a member of this group")
		}
		messages = append([]models.Message{}, doc.Messages[groupID]...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// UploadGroupPhoto stores a group avatar.
func (s *ChatService) UploadGroupPhoto(actor models.Actor, scope models.Scope, groupID, filename string, r io.Reader) (*models.Group, error) {
	if err := s.guard.RequireAdminScope(actor, scope); err != nil {
		return nil, err
	}
	stored, err := s.blobs.Save("group_photo", filename, r)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store photo")
	}
	var previous string
	var updated *models.Group
	_, err = s.store.Chat.Update(scope, func(doc *models.ChatDoc) error {
		group, ok := doc.Groups[groupID]
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "group not found")
		}
		previous = group.Photo
		group.Photo = stored
		doc.Groups[groupID] = group
		copied := group
		updated = &copied
		return nil
	})
	if err != nil {
		_ = s.blobs.Delete(stored)
		return nil, err
	}
	if previous != "" {
		if err := s.blobs.Delete(previous); err != nil {
			s.logger.Warn("failed to delete replaced group photo", zap.String("group", groupID), zap.Error(err))
		}
	}
	return updated, nil
}

// SendThreadMessage posts into the 1:1 thread between a student and a
// teacher. A student names the teacher, an admin names the student.
func (s *ChatService) SendThreadMessage(actor models.Actor, scope models.Scope, otherID string, req SendMessageRequest) (*models.Message, error) {
	key, err := s.threadKey(actor, scope, otherID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Text) == "" && len(req.Attachments) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "message must carry text or attachments")
	}
	if req.Attachments == nil {
		req.Attachments = []models.Attachment{}
	}
	message := models.Message{
		ID:          shortID("msg"),
		From:        models.Sender{Type: actor.SenderType(), ID: actor.ID},
		Text:        req.Text,
		Attachments: req.Attachments,
		TS:          nowStamp(),
	}
	_, err = s.store.Threads.Update(scope, func(doc *models.ThreadDoc) error {
		if doc.Threads == nil {
			doc.Threads = map[string][]models.Message{}
		}
		doc.Threads[key] = append(doc.Threads[key], message)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// ListThread returns the 1:1 log between the actor and the named other
// party.
func (s *ChatService) ListThread(actor models.Actor, scope models.Scope, otherID string) ([]models.Message, error) {
	key, err := s.threadKey(actor, scope, otherID)
	if err != nil {
		return nil, err
	}
	var messages []models.Message
	viewErr := s.store.Threads.View(scope, func(doc models.ThreadDoc) error {
		messages = append([]models.Message{}, doc.Threads[key]...)
		return nil
	})
	if viewErr != nil {
		return nil, appErrors.Wrap(viewErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load thread")
	}
	return messages, nil
}

// CanSend evaluates a group's posting permission against a sender. Unknown
// modes fall back to allowing everyone, so older documents keep working.
func CanSend(group models.Group, actor models.Actor) bool {
	switch group.Permissions.WhoCanChat {
	case models.ChatTeachersOnly, models.ChatAdminsOnly:
		return actor.SenderType() == models.MemberTypeTeacher
	case models.ChatMainAdminOnly:
		return actor.SenderType() == models.MemberTypeTeacher && actor.ID == models.MainAdminID
	case models.ChatCustom:
		key := models.MemberKey(actor.SenderType(), actor.ID)
		for _, allowed := range group.Permissions.AllowedMemberIDs {
			if allowed == key {
				return true
			}
		}
		return false
	default:
		return true
	}
}

// refreshGroupAll rebuilds the section-wide group's member list from the
// current roster and staff. Permissions and the message log are untouched.
func (s *ChatService) refreshGroupAll(scope models.Scope) (models.ChatDoc, error) {
	students, err := s.store.Students.Load(scope)
	if err != nil {
		return models.ChatDoc{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	admins, err := s.store.Admins.Load(scope)
	if err != nil {
		return models.ChatDoc{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load admins")
	}

	members := make([]models.Member, 0, len(students)+len(admins)+1)
	members = append(members, models.Member{
		Type: models.MemberTypeTeacher,
		ID:   models.MainAdminID,
		Name: models.MainAdminName,
	})
	for _, a := range admins {
		members = append(members, models.Member{Type: models.MemberTypeTeacher, ID: a.UserID, Name: a.Name})
	}
	for _, st := range students {
		members = append(members, models.Member{Type: models.MemberTypeStudent, ID: st.ID, Name: st.Name})
	}

	return s.store.Chat.Update(scope, func(doc *models.ChatDoc) error {
		group, ok := doc.Groups[models.GroupAllID]
		if !ok {
			group = models.Group{
				ID:          models.GroupAllID,
				Name:        "Section Group",
				Bio:         "Everyone in this section",
				Permissions: models.GroupPermissions{WhoCanChat: models.ChatAll},
				CreatedAt:   nowStamp(),
			}
		}
		group.Members = members
		doc.Groups[models.GroupAllID] = group
		if doc.Messages[models.GroupAllID] == nil {
			doc.Messages[models.GroupAllID] = []models.Message{}
		}
		return nil
	})
}

// requireScopeMember admits scope-bound admins and students of the scope.
func (s *ChatService) requireScopeMember(actor models.Actor, scope models.Scope) error {
	if err := s.guard.RequireAdminScope(actor, scope); err == nil {
		return nil
	}
	if actor.Role == models.RoleStudent && actor.Scope.Equal(scope) {
		return nil
	}
	return appErrors.ErrUnauthorized
}

func (s *ChatService) threadKey(actor models.Actor, scope models.Scope, otherID string) (string, error) {
	if err := s.requireScopeMember(actor, scope); err != nil {
		return "", err
	}
	if strings.TrimSpace(otherID) == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "the other participant is required")
	}
	if actor.Role == models.RoleStudent {
		return models.ThreadKey(actor.ID, otherID), nil
	}
	return models.ThreadKey(otherID, actor.ID), nil
}

func sortGroups(groups []models.Group) {
	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
}
