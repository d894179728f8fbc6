package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/section-portal-api/internal/models"
	"github.com/noah-isme/section-portal-api/internal/repository"
)

func newChatService(t *testing.T) (*ChatService, *repository.Store) {
	t.Helper()
	store := newTestStore(t)
	return NewChatService(store, NewGuard(), nil, nil, zap.NewNop()), store
}

func seedRoster(t *testing.T, store *repository.Store) {
	t.Helper()
	_, err := store.Students.Update(guardScope, func(students *[]models.Student) error {
		*students = append(*students,
			models.Student{ID: "student_001", Name: "Asha"},
			models.Student{ID: "student_002", Name: "Bilal"},
		)
		return nil
	})
	require.NoError(t, err)
	_, err = store.Admins.Update(guardScope, func(admins *[]models.SecondaryAdmin) error {
		*admins = append(*admins, models.SecondaryAdmin{ID: "professor_001", UserID: "prof1", Name: "Prof One"})
		return nil
	})
	require.NoError(t, err)
}

func TestCanSendMatrix(t *testing.T) {
	student := studentActor("student_001")
	teacher := teacherActor()
	main := mainAdminActor()

	group := func(mode string, allowed ...string) models.Group {
		return models.Group{Permissions: models.GroupPermissions{WhoCanChat: mode, AllowedMemberIDs: allowed}}
	}

	assert.True(t, CanSend(group(models.ChatAll), student))
	assert.True(t, CanSend(group(models.ChatAll), teacher))

	assert.False(t, CanSend(group(models.ChatTeachersOnly), student))
	assert.True(t, CanSend(group(models.ChatTeachersOnly), teacher))
	assert.True(t, CanSend(group(models.ChatTeachersOnly), main))

	assert.False(t, CanSend(group(models.ChatAdminsOnly), student))
	assert.True(t, CanSend(group(models.ChatAdminsOnly), teacher))

	assert.False(t, CanSend(group(models.ChatMainAdminOnly), student))
	assert.False(t, CanSend(group(models.ChatMainAdminOnly), teacher))
	assert.True(t, CanSend(group(models.ChatMainAdminOnly), main))

	assert.True(t, CanSend(group(models.ChatCustom, "student:student_001"), student))
	assert.False(t, CanSend(group(models.ChatCustom, "student:student_002"), student))
	assert.True(t, CanSend(group(models.ChatCustom, "teacher:prof1"), teacher))

	// Unknown modes keep older documents usable.
	assert.True(t, CanSend(group("whatever"), student))
}

func TestListGroupsRefreshesSectionGroup(t *testing.T) {
	svc, store := newChatService(t)
	seedRoster(t, store)

	groups, err := svc.ListGroups(mainAdminActor(), guardScope)
	require.NoError(t, err)
	require.Len(t, groups, 1)

	all := groups[0]
	assert.Equal(t, models.GroupAllID, all.ID)
	assert.True(t, all.HasMember(models.MemberTypeTeacher, models.MainAdminID))
	assert.True(t, all.HasMember(models.MemberTypeTeacher, "prof1"))
	assert.True(t, all.HasMember(models.MemberTypeStudent, "student_001"))
	assert.True(t, all.HasMember(models.MemberTypeStudent, "student_002"))
	assert.Equal(t, 4, all.MemberCount)

	// A roster change shows up on the next listing.
	_, err = store.Students.Update(guardScope, func(students *[]models.Student) error {
		*students = (*students)[:1]
		return nil
	})
	require.NoError(t, err)

	groups, err = svc.ListGroups(mainAdminActor(), guardScope)
	require.NoError(t, err)
	assert.False(t, groups[0].HasMember(models.MemberTypeStudent, "student_002"))
}

func TestStudentsOnlySeeTheirGroups(t *testing.T) {
	svc, store := newChatService(t)
	seedRoster(t, store)

	_, err := svc.CreateGroup(teacherActor(), guardScope, CreateGroupRequest{
		Name:    "Toppers",
		Members: []models.Member{{Type: models.MemberTypeStudent, ID: "student_002", Name: "Bilal"}},
	})
	require.NoError(t, err)

	groups, err := svc.ListGroups(studentActor("student_001"), guardScope)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, models.GroupAllID, groups[0].ID)

	groups, err = svc.ListGroups(studentActor("student_002"), guardScope)
	require.NoError(t, err)
	assert.Len(t, groups, 2)
}

func TestSendMessageRequiresMembership(t *testing.T) {
	svc, store := newChatService(t)
	seedRoster(t, store)

	group, err := svc.CreateGroup(teacherActor(), guardScope, CreateGroupRequest{Name: "Staff Room"})
	require.NoError(t, err)

	_, err = svc.SendMessage(studentActor("student_001"), guardScope, group.ID, SendMessageRequest{Text: "hi"})
	assert.Error(t, err)

	msg, err := svc.SendMessage(teacherActor(), guardScope, group.ID, SendMessageRequest{Text: "hi"})
	require.NoError(t, err)
	assert.Equal(t, models.MemberTypeTeacher, msg.From.Type)
}

func TestMainAdminAutoJoinsOnSend(t *testing.T) {
	svc, store := newChatService(t)
	seedRoster(t, store)

	group, err := svc.CreateGroup(teacherActor(), guardScope, CreateGroupRequest{Name: "Staff Room"})
	require.NoError(t, err)
	assert.False(t, group.HasMember(models.MemberTypeTeacher, models.MainAdminID))

	_, err = svc.SendMessage(mainAdminActor(), guardScope, group.ID, SendMessageRequest{Text: "hello"})
	require.NoError(t, err)

	doc, err := store.Chat.Load(guardScope)
	require.NoError(t, err)
	joined := doc.Groups[group.ID]
	assert.True(t, joined.HasMember(models.MemberTypeTeacher, models.MainAdminID))
	require.Len(t, doc.Messages[group.ID], 1)
}

func TestPermissionModeBlocksPosting(t *testing.T) {
	svc, store := newChatService(t)
	seedRoster(t, store)

	group, err := svc.CreateGroup(teacherActor(), guardScope, CreateGroupRequest{
		Name:        "Announcements",
		Members:     []models.Member{{Type: models.MemberTypeStudent, ID: "student_001", Name: "Asha"}},
		Permissions: &models.GroupPermissions{WhoCanChat: models.ChatTeachersOnly},
	})
	require.NoError(t, err)

	// A member blocked by the mode can read but not post.
	_, err = svc.SendMessage(studentActor("student_001"), guardScope, group.ID, SendMessageRequest{Text: "hi"})
	require.Error(t, err)

	messages, err := svc.ListMessages(studentActor("student_001"), guardScope, group.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestSectionGroupIsProtected(t *testing.T) {
	svc, store := newChatService(t)
	seedRoster(t, store)

	_, err := svc.ListGroups(mainAdminActor(), guardScope)
	require.NoError(t, err)

	err = svc.DeleteGroup(mainAdminActor(), guardScope, models.GroupAllID)
	assert.Error(t, err)

	_, err = svc.UpdateGroup(mainAdminActor(), guardScope, models.GroupAllID, UpdateGroupRequest{
		Members: []models.Member{},
	})
	assert.Error(t, err)
}

func TestThreadsArePairwise(t *testing.T) {
	svc, store := newChatService(t)
	seedRoster(t, store)

	student := studentActor("student_001")
	teacher := teacherActor()

	_, err := svc.SendThreadMessage(student, guardScope, "prof1", SendMessageRequest{Text: "question"})
	require.NoError(t, err)
	_, err = svc.SendThreadMessage(teacher, guardScope, "student_001", SendMessageRequest{Text: "answer"})
	require.NoError(t, err)

	fromStudent, err := svc.ListThread(student, guardScope, "prof1")
	require.NoError(t, err)
	fromTeacher, err := svc.ListThread(teacher, guardScope, "student_001")
	require.NoError(t, err)

	require.Len(t, fromStudent, 2)
	assert.Equal(t, fromStudent, fromTeacher)

	other, err := svc.ListThread(studentActor("student_002"), guardScope, "prof1")
	require.NoError(t, err)
	assert.Empty(t, other)
}
