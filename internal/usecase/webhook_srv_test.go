package usecase

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"testing"

	"ppob-backend/internal/data/entity"
	"ppob-backend/internal/data/repository"
	"ppob-backend/internal/dto/request"
)

func seedPending(t *testing.T, env *testEnv) string {
	t.Helper()
	user := env.seedUser(t, entity.RoleUser)
	product := env.seedProduct(t, "xld10", 10000, 11500)
	resp, err := env.svc.Transaction.Create(context.Background(), &request.CreateTransactionRequest{
		UserID:    user.ID.String(),
		ProductID: product.ID.String(),
	})
	if err != nil {
		t.Fatal(err)
	}
	return resp.RefID
}

func TestReconcileAppliesWrappedAndFlat(t *testing.T) {
	tests := []struct {
		name string
		body func(ref string) string
	}{
		{"wrapped", func(ref string) string {
			return `{"data":{"ref_id":"` + ref + `","status":"sukses","sn":"SN-9"}}`
		}},
		{"flat", func(ref string) string {
			return `{"ref_id":"` + ref + `","status":"sukses","sn":"SN-9"}`
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			env := newTestEnv(t)
			ref := seedPending(t, env)
			body := tt.body(ref)

			resp, err := env.svc.Webhook.Reconcile(ctx, []byte(body), "")
			if err != nil {
				t.Fatalf("Reconcile() error = %v", err)
			}
			if !resp.Applied || resp.Status != entity.TransactionStatusSukses {
				t.Errorf("Reconcile() = %+v", resp)
			}

			stored, _ := env.repo.Transaction.FindByRefID(ctx, ref)
			if stored.Status != entity.TransactionStatusSukses || stored.SN != "SN-9" {
				t.Errorf("stored = %+v", stored)
			}
			if stored.RawResponse != body {
				t.Errorf("raw response = %q, want the webhook body", stored.RawResponse)
			}
		})
	}
}

func TestReconcileKeepsSNWhenOmitted(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ref := seedPending(t, env)

	if _, err := env.svc.Webhook.Reconcile(ctx, []byte(`{"ref_id":"`+ref+`","status":"Pending","sn":"SN-1"}`), ""); err != nil {
		t.Fatal(err)
	}
	if _, err := env.svc.Webhook.Reconcile(ctx, []byte(`{"ref_id":"`+ref+`","status":"Sukses"}`), ""); err != nil {
		t.Fatal(err)
	}

	stored, _ := env.repo.Transaction.FindByRefID(ctx, ref)
	if stored.SN != "SN-1" || stored.Status != entity.TransactionStatusSukses {
		t.Errorf("stored = %+v, want SUKSES keeping SN-1", stored)
	}
}

func TestReconcileIgnoresStalePending(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ref := seedPending(t, env)

	if _, err := env.svc.Webhook.Reconcile(ctx, []byte(`{"ref_id":"`+ref+`","status":"Sukses","sn":"SN-1"}`), ""); err != nil {
		t.Fatal(err)
	}
	resp, err := env.svc.Webhook.Reconcile(ctx, []byte(`{"ref_id":"`+ref+`","status":"Pending"}`), "")
	if err != nil {
		t.Fatalf("stale webhook error = %v, want acknowledgement", err)
	}
	if resp.Applied || resp.Status != entity.TransactionStatusSukses {
		t.Errorf("Reconcile() = %+v, want not applied with SUKSES", resp)
	}

	stored, _ := env.repo.Transaction.FindByRefID(ctx, ref)
	if stored.Status != entity.TransactionStatusSukses {
		t.Errorf("status = %q, stale PENDING overwrote SUKSES", stored.Status)
	}

	// final -> final tetap diterima
	resp, err = env.svc.Webhook.Reconcile(ctx, []byte(`{"ref_id":"`+ref+`","status":"Gagal"}`), "")
	if err != nil || !resp.Applied {
		t.Fatalf("final correction = %+v, %v", resp, err)
	}
}

func TestReconcileDuplicateBody(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ref := seedPending(t, env)
	body := []byte(`{"ref_id":"` + ref + `","status":"Sukses"}`)

	first, err := env.svc.Webhook.Reconcile(ctx, body, "")
	if err != nil || !first.Applied {
		t.Fatalf("first = %+v, %v", first, err)
	}
	before := len(env.events.types())

	second, err := env.svc.Webhook.Reconcile(ctx, body, "")
	if err != nil {
		t.Fatal(err)
	}
	if second.Applied {
		t.Error("duplicate body was applied twice")
	}
	if len(env.events.types()) != before {
		t.Error("duplicate body published another event")
	}
}

func TestReconcileErrors(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.svc.Webhook.Reconcile(ctx, []byte(`{"status":"Sukses"}`), "")
	assertKind(t, err, ErrValidation)

	_, err = env.svc.Webhook.Reconcile(ctx, []byte(`not json`), "")
	assertKind(t, err, ErrValidation)

	unknown := []byte(`{"ref_id":"trx_missing","status":"Sukses"}`)
	_, err = env.svc.Webhook.Reconcile(ctx, unknown, "")
	assertKind(t, err, ErrNotFound)

	// gagal diproses, jadi retry dengan body sama tetap dicek lagi
	_, err = env.svc.Webhook.Reconcile(ctx, unknown, "")
	assertKind(t, err, ErrNotFound)

	total, _ := env.repo.Transaction.Count(ctx, repository.TransactionFilter{})
	if total != 0 {
		t.Errorf("webhook created %d rows", total)
	}
}

func TestReconcileSignature(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, withWebhookSecret("hook-secret"))
	ref := seedPending(t, env)
	body := []byte(`{"data":{"ref_id":"` + ref + `","status":"Sukses"}}`)

	_, err := env.svc.Webhook.Reconcile(ctx, body, "sha1=deadbeef")
	assertKind(t, err, ErrUnauthorized)

	mac := hmac.New(sha1.New, []byte("hook-secret"))
	mac.Write(body)
	sig := "sha1=" + hex.EncodeToString(mac.Sum(nil))

	resp, err := env.svc.Webhook.Reconcile(ctx, body, sig)
	if err != nil || !resp.Applied {
		t.Fatalf("signed webhook = %+v, %v", resp, err)
	}
}
