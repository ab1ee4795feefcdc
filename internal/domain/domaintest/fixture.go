package domaintest

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"taskhive/internal/core/apperror"
	appctx "taskhive/internal/core/context"
	"taskhive/internal/core/entity"
	"taskhive/internal/core/id"
	"taskhive/internal/domain"
	"taskhive/internal/domain/activity"
	"taskhive/internal/domain/attachment"
	"taskhive/internal/domain/cascade"
	"taskhive/internal/domain/comment"
	"taskhive/internal/domain/department"
	"taskhive/internal/domain/material"
	"taskhive/internal/domain/notification"
	"taskhive/internal/domain/organization"
	"taskhive/internal/domain/refs"
	"taskhive/internal/domain/task"
	"taskhive/internal/domain/user"
	"taskhive/internal/domain/vendor"
)

// OrgRepo adds slug lookup to the fake organization repository.
type OrgRepo struct {
	*FakeRepo[*organization.Organization]
}

func (r *OrgRepo) GetBySlug(ctx context.Context, slug string) (*organization.Organization, error) {
	for _, o := range r.Items {
		if o.Slug == slug && !o.Deleted() {
			return o, nil
		}
	}
	return nil, notFound("organization", slug)
}

// UserRepo adds email lookup to the fake user repository.
type UserRepo struct {
	*FakeRepo[*user.User]
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	for _, u := range r.Items {
		if u.Email == email && !u.Deleted() {
			return u, nil
		}
	}
	return nil, notFound("user", email)
}

// FakeJournal is an in-memory material usage journal.
type FakeJournal struct {
	Entries []*material.JournalEntry
}

func (j *FakeJournal) Record(ctx context.Context, e *material.JournalEntry) error {
	j.Entries = append(j.Entries, e)
	return nil
}

func (j *FakeJournal) OpenEntries(ctx context.Context, materialID id.ID) ([]*material.JournalEntry, error) {
	var out []*material.JournalEntry
	for _, e := range j.Entries {
		if e.MaterialID == materialID && e.ReinsertedAt == nil {
			out = append(out, e)
		}
	}
	return out, nil
}

func (j *FakeJournal) MarkReinserted(ctx context.Context, entryID id.ID) error {
	for _, e := range j.Entries {
		if e.ID == entryID {
			now := time.Now().UTC()
			e.ReinsertedAt = &now
		}
	}
	return nil
}

// taskLineItems adapts the fake task repo to material.LineItemStore.
type taskLineItems struct {
	repo *FakeRepo[*task.Task]
}

func (s *taskLineItems) HostType() string { return "task" }

func (s *taskLineItems) StripMaterial(ctx context.Context, materialID id.ID) ([]material.StrippedUsage, error) {
	var out []material.StrippedUsage
	for _, t := range s.repo.Items {
		if t.Deleted() {
			continue
		}
		kept, removed := t.Materials.Without(materialID)
		if len(removed) == 0 {
			continue
		}
		t.Materials = kept
		t.RecomputeTotal()
		for _, u := range removed {
			out = append(out, material.StrippedUsage{HostID: t.ID, Usage: u})
		}
	}
	return out, nil
}

func (s *taskLineItems) ReinsertUsage(ctx context.Context, hostID id.ID, u material.Usage) (bool, error) {
	t, ok := s.repo.Items[hostID]
	if !ok || t.Deleted() {
		return false, nil
	}
	t.Materials = append(t.Materials, u)
	t.RecomputeTotal()
	return true, nil
}

// activityLineItems adapts the fake activity repo to material.LineItemStore.
type activityLineItems struct {
	repo *FakeRepo[*activity.Activity]
}

func (s *activityLineItems) HostType() string { return "activity" }

func (s *activityLineItems) StripMaterial(ctx context.Context, materialID id.ID) ([]material.StrippedUsage, error) {
	var out []material.StrippedUsage
	for _, a := range s.repo.Items {
		if a.Deleted() {
			continue
		}
		kept, removed := a.Materials.Without(materialID)
		if len(removed) == 0 {
			continue
		}
		a.Materials = kept
		a.RecomputeTotal()
		for _, u := range removed {
			out = append(out, material.StrippedUsage{HostID: a.ID, Usage: u})
		}
	}
	return out, nil
}

func (s *activityLineItems) ReinsertUsage(ctx context.Context, hostID id.ID, u material.Usage) (bool, error) {
	a, ok := s.repo.Items[hostID]
	if !ok || a.Deleted() {
		return false, nil
	}
	a.Materials = append(a.Materials, u)
	a.RecomputeTotal()
	return true, nil
}

// taskLinker adapts the fake task repo to vendor.ProjectTaskLinker.
type taskLinker struct {
	repo *FakeRepo[*task.Task]
}

func (l *taskLinker) CountLiveByVendor(ctx context.Context, vendorID id.ID) (int64, error) {
	var n int64
	for _, t := range l.repo.Items {
		if !t.Deleted() && t.VendorID != nil && *t.VendorID == vendorID {
			n++
		}
	}
	return n, nil
}

func (l *taskLinker) RepointVendor(ctx context.Context, from, to id.ID) (int64, error) {
	var n int64
	for _, t := range l.repo.Items {
		if !t.Deleted() && t.VendorID != nil && *t.VendorID == from {
			v := to
			t.VendorID = &v
			n++
		}
	}
	return n, nil
}

// Fixture wires the whole entity graph over in-memory fakes, mirroring the
// production dependency-injection graph.
type Fixture struct {
	Log *OpLog
	Txc *TxChecker

	Orgs          *OrgRepo
	Depts         *FakeRepo[*department.Department]
	Users         *UserRepo
	Tasks         *FakeRepo[*task.Task]
	Activities    *FakeRepo[*activity.Activity]
	Comments      *FakeRepo[*comment.Comment]
	Attachments   *FakeRepo[*attachment.Attachment]
	Materials     *FakeRepo[*material.Material]
	Notifications *FakeRepo[*notification.Notification]
	Vendors       *FakeRepo[*vendor.Vendor]
	Journal       *FakeJournal

	Resolver *refs.Resolver
	Registry *cascade.Registry

	OrgSvc          *organization.Service
	DeptSvc         *department.Service
	UserSvc         *user.Service
	TaskSvc         *task.Service
	ActivitySvc     *activity.Service
	CommentSvc      *comment.Service
	AttachmentSvc   *attachment.Service
	NotificationSvc *notification.Service
	MaterialSvc     *material.Service
	VendorSvc       *vendor.Service
}

// NewFixture assembles the graph with an open transaction checker.
func NewFixture() *Fixture {
	f := &Fixture{
		Log: &OpLog{},
		Txc: &TxChecker{Open: true},
	}

	f.Orgs = &OrgRepo{NewFakeRepo[*organization.Organization]("organization", f.Log)}
	f.Depts = NewFakeRepo[*department.Department]("department", f.Log)
	f.Users = &UserRepo{NewFakeRepo[*user.User]("user", f.Log)}
	f.Tasks = NewFakeRepo[*task.Task]("task", f.Log)
	f.Activities = NewFakeRepo[*activity.Activity]("activity", f.Log)
	f.Comments = NewFakeRepo[*comment.Comment]("comment", f.Log)
	f.Attachments = NewFakeRepo[*attachment.Attachment]("attachment", f.Log)
	f.Materials = NewFakeRepo[*material.Material]("material", f.Log)
	f.Notifications = NewFakeRepo[*notification.Notification]("notification", f.Log)
	f.Vendors = NewFakeRepo[*vendor.Vendor]("vendor", f.Log)
	f.Journal = &FakeJournal{}

	orgProbe := func(ctx context.Context, entityID id.ID) (*refs.Ref, error) {
		if o, ok := f.Orgs.Items[entityID]; ok && !o.Deleted() {
			return &refs.Ref{OrgID: o.ID}, nil
		}
		return nil, nil
	}
	deptProbe := func(ctx context.Context, entityID id.ID) (*refs.Ref, error) {
		if d, ok := f.Depts.Items[entityID]; ok && !d.Deleted() {
			return &refs.Ref{OrgID: d.OrgID, DeptID: d.ID}, nil
		}
		return nil, nil
	}
	taskProbe := func(ctx context.Context, entityID id.ID) (*refs.Ref, error) {
		if t, ok := f.Tasks.Items[entityID]; ok && !t.Deleted() {
			return &refs.Ref{OrgID: t.OrgID, DeptID: t.DeptID}, nil
		}
		return nil, nil
	}
	activityProbe := func(ctx context.Context, entityID id.ID) (*refs.Ref, error) {
		if a, ok := f.Activities.Items[entityID]; ok && !a.Deleted() {
			return &refs.Ref{OrgID: a.OrgID, DeptID: a.DeptID}, nil
		}
		return nil, nil
	}
	commentProbe := func(ctx context.Context, entityID id.ID) (*refs.Ref, error) {
		if c, ok := f.Comments.Items[entityID]; ok && !c.Deleted() {
			return &refs.Ref{OrgID: c.OrgID, DeptID: c.DeptID}, nil
		}
		return nil, nil
	}
	matProbe := func(ctx context.Context, entityID id.ID) (*refs.Ref, error) {
		if m, ok := f.Materials.Items[entityID]; ok && !m.Deleted() {
			return &refs.Ref{OrgID: m.OrgID, DeptID: m.DeptID}, nil
		}
		return nil, nil
	}
	vendorProbe := func(ctx context.Context, entityID id.ID) (*refs.Ref, error) {
		if v, ok := f.Vendors.Items[entityID]; ok && !v.Deleted() {
			return &refs.Ref{OrgID: v.OrgID}, nil
		}
		return nil, nil
	}
	userProbe := func(ctx context.Context, userID id.ID) (*refs.UserRef, error) {
		if u, ok := f.Users.Items[userID]; ok && !u.Deleted() {
			return &refs.UserRef{OrgID: u.OrgID, DeptID: u.DeptID, Role: u.Role}, nil
		}
		return nil, nil
	}

	f.Resolver = refs.NewResolver()
	f.Resolver.Register("task", taskProbe)
	f.Resolver.Register("activity", activityProbe)
	f.Resolver.Register("comment", commentProbe)

	recorder := domain.NopRecorder{}

	f.CommentSvc = comment.NewService(f.Comments, f.Txc, f.Attachments, f.Resolver, userProbe, recorder)
	f.AttachmentSvc = attachment.NewService(f.Attachments, f.Txc, f.Resolver, userProbe, recorder)
	f.NotificationSvc = notification.NewService(f.Notifications, f.Txc, f.Resolver, userProbe, recorder)
	f.ActivitySvc = activity.NewService(
		f.Activities, f.Txc, f.CommentSvc, f.Comments, f.Attachments,
		taskProbe, matProbe, userProbe, recorder,
	)
	f.TaskSvc = task.NewService(
		f.Tasks, f.Txc, f.ActivitySvc, f.Activities, f.CommentSvc, f.Comments,
		f.Attachments, f.Notifications,
		deptProbe, vendorProbe, matProbe, userProbe, recorder,
	)
	f.UserSvc = user.NewService(f.Users, f.Txc, deptProbe, recorder)
	f.MaterialSvc = material.NewService(
		f.Materials, f.Txc,
		[]material.LineItemStore{&taskLineItems{f.Tasks}, &activityLineItems{f.Activities}},
		f.Journal, deptProbe, recorder,
	)
	f.VendorSvc = vendor.NewService(f.Vendors, f.Txc, &taskLinker{f.Tasks}, recorder)

	deptNets := []department.ScopedNet{
		{Name: "activities", Store: f.Activities},
		{Name: "comments", Store: f.Comments},
		{Name: "attachments", Store: f.Attachments},
		{Name: "materials", Store: f.Materials},
		{Name: "notifications", Store: f.Notifications},
	}
	f.DeptSvc = department.NewService(
		f.Depts, f.Txc, f.Users, f.TaskSvc, f.Tasks, deptNets, orgProbe, recorder,
	)

	orgNets := []department.ScopedNet{
		{Name: "users", Store: f.Users},
		{Name: "tasks", Store: f.Tasks},
		{Name: "activities", Store: f.Activities},
		{Name: "comments", Store: f.Comments},
		{Name: "attachments", Store: f.Attachments},
		{Name: "materials", Store: f.Materials},
		{Name: "notifications", Store: f.Notifications},
		{Name: "vendors", Store: f.Vendors},
	}
	f.OrgSvc = organization.NewService(f.Orgs, f.Txc, f.DeptSvc, f.Depts, orgNets, recorder)

	f.Registry = cascade.NewRegistry()
	f.Registry.Register(organization.EntityType, f.OrgSvc)
	f.Registry.Register(department.EntityType, f.DeptSvc)
	f.Registry.Register(user.EntityType, f.UserSvc)
	f.Registry.Register(task.EntityType, f.TaskSvc)
	f.Registry.Register(activity.EntityType, f.ActivitySvc)
	f.Registry.Register(comment.EntityType, f.CommentSvc)
	f.Registry.Register(attachment.EntityType, f.AttachmentSvc)
	f.Registry.Register(notification.EntityType, f.NotificationSvc)
	f.Registry.Register(material.EntityType, f.MaterialSvc)

	return f
}

// --- seed helpers ---

// SeedOrg creates and stores an organization.
func (f *Fixture) SeedOrg(name string, platform bool) *organization.Organization {
	o := &organization.Organization{Base: entity.NewBase(), Name: name, Slug: name, IsPlatformOrg: platform}
	f.Orgs.Put(o)
	return o
}

// SeedDept creates and stores a department under an organization.
func (f *Fixture) SeedDept(org *organization.Organization, name string) *department.Department {
	d := &department.Department{Base: entity.NewBase(), Name: name, Code: name}
	d.OrgID = org.ID
	f.Depts.Put(d)
	return d
}

// SeedUser creates and stores a user in a department.
func (f *Fixture) SeedUser(d *department.Department, email string, role appctx.Role) *user.User {
	u := &user.User{Base: entity.NewBase(), Email: email, FullName: email, PasswordHash: "x", Role: role}
	u.OrgID = d.OrgID
	u.DeptID = d.ID
	f.Users.Put(u)
	return u
}

// SeedTask creates and stores a task in a department.
func (f *Fixture) SeedTask(d *department.Department, kind task.Kind, createdBy id.ID) *task.Task {
	t := &task.Task{
		Base:      entity.NewBase(),
		Kind:      kind,
		Title:     "task",
		Status:    task.StatusOpen,
		Priority:  task.PriorityMedium,
		CreatedBy: createdBy,
	}
	t.OrgID = d.OrgID
	t.DeptID = d.ID
	f.Tasks.Put(t)
	return t
}

// SeedActivity creates and stores an activity on a task.
func (f *Fixture) SeedActivity(t *task.Task, addedBy id.ID) *activity.Activity {
	a := &activity.Activity{Base: entity.NewBase(), TaskID: t.ID, AddedBy: addedBy, Note: "progress"}
	a.OrgID = t.OrgID
	a.DeptID = t.DeptID
	f.Activities.Put(a)
	return a
}

// SeedComment creates and stores a comment under a polymorphic parent.
func (f *Fixture) SeedComment(orgID, deptID id.ID, parentType string, parentID, author id.ID) *comment.Comment {
	c := &comment.Comment{
		Base:       entity.NewBase(),
		AuthorID:   author,
		Body:       "comment",
		ParentType: parentType,
		ParentID:   parentID,
	}
	c.OrgID = orgID
	c.DeptID = deptID
	f.Comments.Put(c)
	return c
}

// SeedAttachment creates and stores an attachment under a parent.
func (f *Fixture) SeedAttachment(orgID, deptID id.ID, parentType string, parentID, uploadedBy id.ID) *attachment.Attachment {
	a := &attachment.Attachment{
		Base:        entity.NewBase(),
		ParentType:  parentType,
		ParentID:    parentID,
		FileName:    "file.pdf",
		ContentType: "application/pdf",
		Size:        1,
		StorageKey:  "key",
		UploadedBy:  uploadedBy,
	}
	a.OrgID = orgID
	a.DeptID = deptID
	f.Attachments.Put(a)
	return a
}

// SeedMaterial creates and stores a material in a department.
func (f *Fixture) SeedMaterial(d *department.Department, name string, unitPrice string) *material.Material {
	m := &material.Material{
		Base:      entity.NewBase(),
		Name:      name,
		Unit:      "kg",
		UnitPrice: decimal.RequireFromString(unitPrice),
	}
	m.OrgID = d.OrgID
	m.DeptID = d.ID
	f.Materials.Put(m)
	return m
}

// SeedVendor creates and stores a vendor under an organization.
func (f *Fixture) SeedVendor(org *organization.Organization, name string) *vendor.Vendor {
	v := &vendor.Vendor{Base: entity.NewBase(), Name: name, ContactEmail: name + "@vendor.test"}
	v.OrgID = org.ID
	f.Vendors.Put(v)
	return v
}

// SeedNotification creates and stores a notification targeting an entity.
func (f *Fixture) SeedNotification(orgID, deptID id.ID, targetType string, targetID, recipient id.ID) *notification.Notification {
	n := &notification.Notification{
		Base:       entity.NewBase(),
		TargetType: targetType,
		TargetID:   targetID,
		Recipients: []id.ID{recipient},
		Kind:       notification.KindAssigned,
		Message:    "msg",
	}
	n.OrgID = orgID
	n.DeptID = deptID
	f.Notifications.Put(n)
	return n
}

// UsageOf builds a line item for a material at its catalog price.
func UsageOf(m *material.Material, qty string) material.Usage {
	return material.Usage{
		MaterialID: m.ID,
		Quantity:   decimal.RequireFromString(qty),
		UnitPrice:  m.UnitPrice,
	}
}

func notFound(entityName, key string) error {
	return apperror.NewNotFound(entityName, key)
}
