package groups

import (
	"context"
	"sort"
	"testing"

	"github.com/slabworks/slabdesk-backend/internal/lifecycle"
	"github.com/slabworks/slabdesk-backend/pkg/db/models"
	"github.com/slabworks/slabdesk-backend/pkg/enums"
	pkgerrors "github.com/slabworks/slabdesk-backend/pkg/errors"
	"github.com/slabworks/slabdesk-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stubGroupsRepo struct {
	group   *models.GradingGroup
	members []models.GroupMember
	// foreignMembers holds membership rows owned by other groups.
	foreignMembers []models.GroupMember
	groupCards     []models.GroupCard
	cardsBySub     map[uuid.UUID][]uuid.UUID
	knownSubs      map[uuid.UUID]struct{}
	groupUpdate    map[string]any
	shifts         int
	lockCalls      int
}

func (s *stubGroupsRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubGroupsRepo) FindGroupByID(ctx context.Context, id uuid.UUID) (*models.GradingGroup, error) {
	if s.group == nil || s.group.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.group, nil
}

func (s *stubGroupsRepo) FindGroupByCode(ctx context.Context, code string) (*models.GradingGroup, error) {
	if s.group == nil || s.group.Code != code {
		return nil, gorm.ErrRecordNotFound
	}
	return s.group, nil
}

func (s *stubGroupsRepo) FindGroupForUpdate(ctx context.Context, id uuid.UUID) (*models.GradingGroup, error) {
	s.lockCalls++
	return s.FindGroupByID(ctx, id)
}

func (s *stubGroupsRepo) FindGroupDetail(ctx context.Context, id uuid.UUID) (*models.GradingGroup, error) {
	return s.FindGroupByID(ctx, id)
}

func (s *stubGroupsRepo) ListGroups(ctx context.Context, params pagination.Params, filters GroupFilters) (*GroupList, error) {
	return &GroupList{}, nil
}

func (s *stubGroupsRepo) CreateGroup(ctx context.Context, group *models.GradingGroup) (*models.GradingGroup, error) {
	if group.ID == uuid.Nil {
		group.ID = uuid.New()
	}
	s.group = group
	return group, nil
}

func (s *stubGroupsRepo) UpdateGroup(ctx context.Context, groupID uuid.UUID, updates map[string]any) error {
	s.groupUpdate = updates
	return nil
}

func (s *stubGroupsRepo) ListMembers(ctx context.Context, groupID uuid.UUID) ([]models.GroupMember, error) {
	out := make([]models.GroupMember, len(s.members))
	copy(out, s.members)
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (s *stubGroupsRepo) ListGroupCards(ctx context.Context, groupID uuid.UUID) ([]models.GroupCard, error) {
	out := make([]models.GroupCard, len(s.groupCards))
	copy(out, s.groupCards)
	sort.Slice(out, func(i, j int) bool { return out[i].CardNo < out[j].CardNo })
	return out, nil
}

func (s *stubGroupsRepo) MembershipsBySubmissions(ctx context.Context, submissionIDs []uuid.UUID) ([]models.GroupMember, error) {
	var out []models.GroupMember
	for _, member := range append(append([]models.GroupMember{}, s.members...), s.foreignMembers...) {
		for _, id := range submissionIDs {
			if member.SubmissionID == id {
				out = append(out, member)
			}
		}
	}
	return out, nil
}

func (s *stubGroupsRepo) CreateMembers(ctx context.Context, members []models.GroupMember) error {
	s.members = append(s.members, members...)
	return nil
}

func (s *stubGroupsRepo) CreateGroupCards(ctx context.Context, cards []models.GroupCard) error {
	s.groupCards = append(s.groupCards, cards...)
	return nil
}

func (s *stubGroupsRepo) DeleteMembers(ctx context.Context, groupID uuid.UUID, submissionIDs []uuid.UUID) (int64, error) {
	removeSet := make(map[uuid.UUID]struct{}, len(submissionIDs))
	for _, id := range submissionIDs {
		removeSet[id] = struct{}{}
	}
	kept := s.members[:0]
	removed := int64(0)
	for _, member := range s.members {
		if _, ok := removeSet[member.SubmissionID]; ok {
			removed++
			continue
		}
		kept = append(kept, member)
	}
	s.members = kept
	return removed, nil
}

func (s *stubGroupsRepo) DeleteGroupCardsBySubmissions(ctx context.Context, groupID uuid.UUID, submissionIDs []uuid.UUID) (int64, error) {
	removeSet := make(map[uuid.UUID]struct{})
	for _, subID := range submissionIDs {
		for _, cardID := range s.cardsBySub[subID] {
			removeSet[cardID] = struct{}{}
		}
	}
	kept := s.groupCards[:0]
	removed := int64(0)
	for _, gc := range s.groupCards {
		if _, ok := removeSet[gc.CardID]; ok {
			removed++
			continue
		}
		kept = append(kept, gc)
	}
	s.groupCards = kept
	return removed, nil
}

func (s *stubGroupsRepo) CardIDsBySubmissions(ctx context.Context, submissionIDs []uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, subID := range submissionIDs {
		ids = append(ids, s.cardsBySub[subID]...)
	}
	return ids, nil
}

func (s *stubGroupsRepo) CountSubmissions(ctx context.Context, submissionIDs []uuid.UUID) (int64, error) {
	count := int64(0)
	for _, id := range submissionIDs {
		if _, ok := s.knownSubs[id]; ok {
			count++
		}
	}
	return count, nil
}

func (s *stubGroupsRepo) ShiftMemberPositions(ctx context.Context, groupID uuid.UUID, offset int) error {
	s.shifts++
	for i := range s.members {
		s.members[i].Position += offset
	}
	return nil
}

func (s *stubGroupsRepo) ShiftCardNumbers(ctx context.Context, groupID uuid.UUID, offset int) error {
	s.shifts++
	for i := range s.groupCards {
		s.groupCards[i].CardNo += offset
	}
	return nil
}

func (s *stubGroupsRepo) SetMemberPosition(ctx context.Context, groupID, submissionID uuid.UUID, position int) error {
	for i := range s.members {
		if s.members[i].SubmissionID == submissionID {
			s.members[i].Position = position
		}
	}
	return nil
}

func (s *stubGroupsRepo) SetCardNumber(ctx context.Context, groupID, cardID uuid.UUID, cardNo int) error {
	for i := range s.groupCards {
		if s.groupCards[i].CardID == cardID {
			s.groupCards[i].CardNo = cardNo
		}
	}
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubLifecycle struct {
	input  lifecycle.AdvanceInput
	result *lifecycle.AdvanceResult
}

func (s *stubLifecycle) AdvanceSubmissions(ctx context.Context, input lifecycle.AdvanceInput) (*lifecycle.AdvanceResult, error) {
	s.input = input
	if s.result != nil {
		return s.result, nil
	}
	return &lifecycle.AdvanceResult{}, nil
}

func (s *stubLifecycle) CorrectSubmissionStatus(ctx context.Context, submissionID uuid.UUID, status enums.SubmissionStatus) error {
	return nil
}

func newGroupsService(t *testing.T, repo *stubGroupsRepo, lc lifecycle.Service) Service {
	t.Helper()
	if lc == nil {
		lc = &stubLifecycle{}
	}
	svc, err := NewService(repo, stubTxRunner{}, lc, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestAddSubmissionsToLockedGroup(t *testing.T) {
	groupID := uuid.New()
	repo := &stubGroupsRepo{
		group: &models.GradingGroup{ID: groupID, Code: "GRP-0001", Status: enums.GroupStatusAtPSA},
	}
	svc := newGroupsService(t, repo, nil)

	_, err := svc.AddSubmissionsToGroup(context.Background(), groupID, []uuid.UUID{uuid.New()})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeGroupLocked {
		t.Fatalf("expected GROUP_LOCKED, got %v", err)
	}
	if len(repo.members) != 0 {
		t.Fatalf("no members should be written")
	}
}

func TestAddSubmissionsAppendsAndStaysDense(t *testing.T) {
	groupID := uuid.New()
	existing := uuid.New()
	added := uuid.New()
	addedCards := []uuid.UUID{uuid.New(), uuid.New()}
	repo := &stubGroupsRepo{
		group: &models.GradingGroup{ID: groupID, Status: enums.GroupStatusDraft},
		members: []models.GroupMember{
			{GroupID: groupID, SubmissionID: existing, Position: 1},
		},
		groupCards: []models.GroupCard{
			{GroupID: groupID, CardID: uuid.New(), CardNo: 1},
		},
		cardsBySub: map[uuid.UUID][]uuid.UUID{added: addedCards},
		knownSubs:  map[uuid.UUID]struct{}{existing: {}, added: {}},
	}
	svc := newGroupsService(t, repo, nil)

	result, err := svc.AddSubmissionsToGroup(context.Background(), groupID, []uuid.UUID{existing, added})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	// The already-present submission is skipped, not an error.
	if result.Submissions != 1 || result.Cards != 2 {
		t.Fatalf("unexpected counts %+v", result)
	}
	assertDenseMembers(t, repo.members)
	assertDenseCards(t, repo.groupCards)
}

func TestAddSubmissionsRejectsMemberOfAnotherGroup(t *testing.T) {
	groupID := uuid.New()
	otherGroupID := uuid.New()
	claimed := uuid.New()
	repo := &stubGroupsRepo{
		group: &models.GradingGroup{ID: groupID, Code: "GRP-0003", Status: enums.GroupStatusDraft},
		foreignMembers: []models.GroupMember{
			{GroupID: otherGroupID, SubmissionID: claimed, Position: 1},
		},
		cardsBySub: map[uuid.UUID][]uuid.UUID{claimed: {uuid.New()}},
		knownSubs:  map[uuid.UUID]struct{}{claimed: {}},
	}
	svc := newGroupsService(t, repo, nil)

	// A submission can belong to at most one group at a time.
	_, err := svc.AddSubmissionsToGroup(context.Background(), groupID, []uuid.UUID{claimed})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
	if len(repo.members) != 0 {
		t.Fatalf("no membership should be written, got %d", len(repo.members))
	}
}

func TestGetGroupByCode(t *testing.T) {
	groupID := uuid.New()
	repo := &stubGroupsRepo{
		group: &models.GradingGroup{ID: groupID, Code: "GRP-0007", Status: enums.GroupStatusDraft},
	}
	svc := newGroupsService(t, repo, nil)

	group, err := svc.GetGroupByCode(context.Background(), " GRP-0007 ")
	if err != nil {
		t.Fatalf("get by code: %v", err)
	}
	if group.ID != groupID {
		t.Fatalf("expected group %s, got %s", groupID, group.ID)
	}

	_, err = svc.GetGroupByCode(context.Background(), "GRP-9999")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestRemoveSubmissionsRepacksDense(t *testing.T) {
	groupID := uuid.New()
	subs := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New(), uuid.New()}
	repo := &stubGroupsRepo{
		group:      &models.GradingGroup{ID: groupID, Status: enums.GroupStatusDraft},
		cardsBySub: map[uuid.UUID][]uuid.UUID{},
		knownSubs:  map[uuid.UUID]struct{}{},
	}
	for i, subID := range subs {
		cardID := uuid.New()
		repo.members = append(repo.members, models.GroupMember{GroupID: groupID, SubmissionID: subID, Position: i + 1})
		repo.groupCards = append(repo.groupCards, models.GroupCard{GroupID: groupID, CardID: cardID, CardNo: i + 1})
		repo.cardsBySub[subID] = []uuid.UUID{cardID}
		repo.knownSubs[subID] = struct{}{}
	}
	keptThird := repo.groupCards[2].CardID
	svc := newGroupsService(t, repo, nil)

	result, err := svc.RemoveSubmissionsFromGroup(context.Background(), groupID, []uuid.UUID{subs[1], subs[3]})
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if result.Submissions != 2 || result.Cards != 2 {
		t.Fatalf("unexpected counts %+v", result)
	}
	if len(repo.groupCards) != 3 {
		t.Fatalf("expected 3 surviving cards, got %d", len(repo.groupCards))
	}
	assertDenseMembers(t, repo.members)
	assertDenseCards(t, repo.groupCards)
	// Prior relative order survives: the old third card is now second.
	for _, gc := range repo.groupCards {
		if gc.CardID == keptThird && gc.CardNo != 2 {
			t.Fatalf("expected old third card at position 2, got %d", gc.CardNo)
		}
	}
}

func TestReorderGroupCardsRejectsNonPermutation(t *testing.T) {
	groupID := uuid.New()
	a, b := uuid.New(), uuid.New()
	repo := &stubGroupsRepo{
		group: &models.GradingGroup{ID: groupID, Status: enums.GroupStatusDraft},
		groupCards: []models.GroupCard{
			{GroupID: groupID, CardID: a, CardNo: 1},
			{GroupID: groupID, CardID: b, CardNo: 2},
		},
	}
	svc := newGroupsService(t, repo, nil)

	cases := [][]uuid.UUID{
		{a},              // missing card
		{a, uuid.New()},  // foreign card
		{a, a},           // duplicate
		{a, b, uuid.New()}, // extra card
	}
	for _, ordered := range cases {
		err := svc.ReorderGroupCards(context.Background(), groupID, ordered)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected VALIDATION_ERROR for %v, got %v", ordered, err)
		}
	}
}

func TestReorderGroupCardsEmptyGroup(t *testing.T) {
	groupID := uuid.New()
	repo := &stubGroupsRepo{
		group: &models.GradingGroup{ID: groupID, Status: enums.GroupStatusDraft},
	}
	svc := newGroupsService(t, repo, nil)

	// An empty sequence is the exact permutation of a group with no cards.
	if err := svc.ReorderGroupCards(context.Background(), groupID, nil); err != nil {
		t.Fatalf("reorder of empty group: %v", err)
	}

	repo.groupCards = []models.GroupCard{{GroupID: groupID, CardID: uuid.New(), CardNo: 1}}
	err := svc.ReorderGroupCards(context.Background(), groupID, nil)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestReorderGroupCardsLockedGroup(t *testing.T) {
	groupID := uuid.New()
	repo := &stubGroupsRepo{
		group: &models.GradingGroup{ID: groupID, Code: "GRP-0002", Status: enums.GroupStatusAtPSA},
		groupCards: []models.GroupCard{
			{GroupID: groupID, CardID: uuid.New(), CardNo: 1},
		},
	}
	svc := newGroupsService(t, repo, nil)

	err := svc.ReorderGroupCards(context.Background(), groupID, []uuid.UUID{repo.groupCards[0].CardID})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeGroupLocked {
		t.Fatalf("expected GROUP_LOCKED, got %v", err)
	}
}

func TestReorderGroupCardsRewritesOrder(t *testing.T) {
	groupID := uuid.New()
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	repo := &stubGroupsRepo{
		group: &models.GradingGroup{ID: groupID, Status: enums.GroupStatusDraft},
		groupCards: []models.GroupCard{
			{GroupID: groupID, CardID: a, CardNo: 1},
			{GroupID: groupID, CardID: b, CardNo: 2},
			{GroupID: groupID, CardID: c, CardNo: 3},
		},
	}
	svc := newGroupsService(t, repo, nil)

	if err := svc.ReorderGroupCards(context.Background(), groupID, []uuid.UUID{c, a, b}); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	want := map[uuid.UUID]int{c: 1, a: 2, b: 3}
	for _, gc := range repo.groupCards {
		if want[gc.CardID] != gc.CardNo {
			t.Fatalf("card %s expected no %d, got %d", gc.CardID, want[gc.CardID], gc.CardNo)
		}
	}
	if repo.shifts == 0 {
		t.Fatalf("expected two-phase shift before final numbering")
	}
}

func TestSetGroupStatusReadyToShipAlias(t *testing.T) {
	groupID := uuid.New()
	repo := &stubGroupsRepo{
		group: &models.GradingGroup{ID: groupID, Status: enums.GroupStatusDraft},
	}
	lc := &stubLifecycle{}
	svc := newGroupsService(t, repo, lc)

	result, err := svc.SetGroupStatus(context.Background(), groupID, "ready_to_ship")
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if result.Group.Status != enums.GroupStatusReadyToShip {
		t.Fatalf("expected ready_to_ship, got %s", result.Group.Status)
	}
	if lc.input.Target != "" {
		t.Fatalf("alias must not touch submissions")
	}
}

func TestSetGroupStatusReadyToShipNeverRegresses(t *testing.T) {
	groupID := uuid.New()
	repo := &stubGroupsRepo{
		group: &models.GradingGroup{ID: groupID, Status: enums.GroupStatusAtPSA},
	}
	svc := newGroupsService(t, repo, nil)

	result, err := svc.SetGroupStatus(context.Background(), groupID, "ready_to_ship")
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if result.Group.Status != enums.GroupStatusAtPSA {
		t.Fatalf("group regressed to %s", result.Group.Status)
	}
	if repo.groupUpdate != nil {
		t.Fatalf("no write expected, got %v", repo.groupUpdate)
	}
}

func TestSetGroupStatusDelegatesToLifecycle(t *testing.T) {
	groupID := uuid.New()
	repo := &stubGroupsRepo{
		group: &models.GradingGroup{ID: groupID, Status: enums.GroupStatusReadyToShip},
	}
	lc := &stubLifecycle{
		result: &lifecycle.AdvanceResult{
			UpdatedSubmissions: 3,
			UpdatedCards:       7,
			Group:              &models.GradingGroup{ID: groupID, Status: enums.GroupStatusAtPSA},
		},
	}
	svc := newGroupsService(t, repo, lc)

	result, err := svc.SetGroupStatus(context.Background(), groupID, "shipped_to_psa")
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if lc.input.GroupID != groupID || lc.input.Target != enums.SubmissionStatusShippedToPSA {
		t.Fatalf("unexpected delegate input %+v", lc.input)
	}
	if result.UpdatedSubmissions != 3 || result.UpdatedCards != 7 {
		t.Fatalf("unexpected counts %+v", result)
	}
	if result.Group.Status != enums.GroupStatusAtPSA {
		t.Fatalf("expected cascaded group, got %s", result.Group.Status)
	}
}

func TestSetGroupStatusUnknownValue(t *testing.T) {
	groupID := uuid.New()
	repo := &stubGroupsRepo{
		group: &models.GradingGroup{ID: groupID, Status: enums.GroupStatusDraft},
	}
	svc := newGroupsService(t, repo, nil)

	_, err := svc.SetGroupStatus(context.Background(), groupID, "warehouse_limbo")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInvalidStatus {
		t.Fatalf("expected INVALID_STATUS, got %v", err)
	}
}

func TestReopenGroupStepsBackOneState(t *testing.T) {
	groupID := uuid.New()
	repo := &stubGroupsRepo{
		group: &models.GradingGroup{ID: groupID, Status: enums.GroupStatusAtPSA},
	}
	svc := newGroupsService(t, repo, nil)

	group, err := svc.ReopenGroup(context.Background(), groupID)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if group.Status != enums.GroupStatusReadyToShip || !group.ReopenHold {
		t.Fatalf("unexpected group state %+v", group)
	}
}

func TestReopenDraftGroupRejected(t *testing.T) {
	groupID := uuid.New()
	repo := &stubGroupsRepo{
		group: &models.GradingGroup{ID: groupID, Status: enums.GroupStatusDraft},
	}
	svc := newGroupsService(t, repo, nil)

	_, err := svc.ReopenGroup(context.Background(), groupID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}
}

func assertDenseMembers(t *testing.T, members []models.GroupMember) {
	t.Helper()
	seen := make(map[int]bool, len(members))
	for _, member := range members {
		seen[member.Position] = true
	}
	for i := 1; i <= len(members); i++ {
		if !seen[i] {
			t.Fatalf("member positions not dense: missing %d in %v", i, seen)
		}
	}
}

func assertDenseCards(t *testing.T, cards []models.GroupCard) {
	t.Helper()
	seen := make(map[int]bool, len(cards))
	for _, gc := range cards {
		seen[gc.CardNo] = true
	}
	for i := 1; i <= len(cards); i++ {
		if !seen[i] {
			t.Fatalf("card numbers not dense: missing %d in %v", i, seen)
		}
	}
}
