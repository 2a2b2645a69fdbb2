package auth

import (
	"context"
	"testing"
)

func TestIdentityRoundTrip(t *testing.T) {
	ctx := WithIdentity(context.Background(), Identity{UserID: " u1 ", Email: "a@b.c"})
	id, ok := IdentityFrom(ctx)
	if !ok {
		t.Fatalf("expected identity")
	}
	if id.UserID != "u1" || id.Email != "a@b.c" {
		t.Fatalf("unexpected identity %+v", id)
	}
}

func TestBlankIdentityIsIgnored(t *testing.T) {
	ctx := WithIdentity(context.Background(), Identity{UserID: "   ", Email: "a@b.c"})
	if _, ok := IdentityFrom(ctx); ok {
		t.Fatalf("blank user id must not resolve to an identity")
	}
}
