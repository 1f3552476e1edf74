package members

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/clubscouncil/portal-backend/pkg/db/models"
)

func setupMembersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// One shared in-memory database per test, so rows never leak between tests.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS members (
  id TEXT PRIMARY KEY,
  cid TEXT NOT NULL,
  uid TEXT NOT NULL,
  roles TEXT NOT NULL,
  poc INTEGER NOT NULL DEFAULT 0,
  creation_time DATETIME,
  last_edited_time DATETIME,
  UNIQUE (cid, uid)
);`
	require.NoError(t, conn.Exec(ddl).Error)
	return conn
}

func seedMember(t *testing.T, conn *gorm.DB, cid, uid string, roles models.RoleList) {
	t.Helper()
	member := &models.Member{ID: uuid.New(), CID: cid, UID: uid, Roles: roles}
	require.NoError(t, conn.Create(member).Error)
}

func TestRepositoryFindAndUpdate(t *testing.T) {
	ctx := context.Background()
	conn := setupMembersTestDB(t)
	repo := NewRepository(conn)

	seedMember(t, conn, "robotics", "u1", models.RoleList{
		{RID: "1", Name: "lead", StartYear: 2023},
	})

	member, err := repo.FindByKey(ctx, "robotics", "u1")
	if err != nil {
		t.Fatalf("find by key: %v", err)
	}
	if len(member.Roles) != 1 || member.Roles[0].Name != "lead" {
		t.Fatalf("unexpected roles %+v", member.Roles)
	}

	member.Roles[0].Approved = true
	member.POC = true
	if err := repo.Update(ctx, member); err != nil {
		t.Fatalf("update: %v", err)
	}

	reloaded, err := repo.FindByKey(ctx, "robotics", "u1")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reloaded.Roles[0].Approved || !reloaded.POC {
		t.Fatalf("update did not persist: %+v", reloaded)
	}
}

func TestRepositoryFindMissingIsErrRecordNotFound(t *testing.T) {
	conn := setupMembersTestDB(t)
	repo := NewRepository(conn)

	_, err := repo.FindByKey(context.Background(), "robotics", "ghost")
	if err != gorm.ErrRecordNotFound {
		t.Fatalf("expected gorm.ErrRecordNotFound, got %v", err)
	}
}

func TestRepositoryListScopes(t *testing.T) {
	ctx := context.Background()
	conn := setupMembersTestDB(t)
	repo := NewRepository(conn)

	seedMember(t, conn, "robotics", "u1", models.RoleList{{RID: "1", Name: "lead", StartYear: 2023}})
	seedMember(t, conn, "robotics", "u2", models.RoleList{{RID: "2", Name: "member", StartYear: 2024}})
	seedMember(t, conn, "debate", "u1", models.RoleList{{RID: "3", Name: "captain", StartYear: 2022}})

	byClub, err := repo.ListByClub(ctx, "robotics")
	if err != nil {
		t.Fatalf("list by club: %v", err)
	}
	if len(byClub) != 2 {
		t.Fatalf("expected 2 robotics members, got %d", len(byClub))
	}

	byUID, err := repo.ListByUID(ctx, "u1")
	if err != nil {
		t.Fatalf("list by uid: %v", err)
	}
	if len(byUID) != 2 {
		t.Fatalf("expected 2 memberships for u1, got %d", len(byUID))
	}

	all, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 memberships, got %d", len(all))
	}
}

func TestRepositoryDeleteByKey(t *testing.T) {
	ctx := context.Background()
	conn := setupMembersTestDB(t)
	repo := NewRepository(conn)

	seedMember(t, conn, "robotics", "u1", models.RoleList{{RID: "1", Name: "lead", StartYear: 2023}})
	if err := repo.DeleteByKey(ctx, "robotics", "u1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.FindByKey(ctx, "robotics", "u1"); err != gorm.ErrRecordNotFound {
		t.Fatalf("expected record gone, got %v", err)
	}
}

func TestRepositoryRenameCIDIsIdempotent(t *testing.T) {
	ctx := context.Background()
	conn := setupMembersTestDB(t)
	repo := NewRepository(conn)

	seedMember(t, conn, "robotics", "u1", models.RoleList{{RID: "1", Name: "lead", StartYear: 2023}})
	seedMember(t, conn, "robotics", "u2", models.RoleList{{RID: "2", Name: "member", StartYear: 2024}})
	seedMember(t, conn, "debate", "u3", models.RoleList{{RID: "3", Name: "captain", StartYear: 2022}})

	updated, err := repo.RenameCID(ctx, "robotics", "robotics-soc")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if updated != 2 {
		t.Fatalf("expected 2 rows updated, got %d", updated)
	}

	again, err := repo.RenameCID(ctx, "robotics", "robotics-soc")
	if err != nil {
		t.Fatalf("second rename: %v", err)
	}
	if again != 0 {
		t.Fatalf("second run should touch zero rows, got %d", again)
	}

	moved, err := repo.ListByClub(ctx, "robotics-soc")
	if err != nil {
		t.Fatalf("list renamed club: %v", err)
	}
	if len(moved) != 2 {
		t.Fatalf("expected 2 re-keyed members, got %d", len(moved))
	}
}
