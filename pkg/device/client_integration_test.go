//go:build integration

package device_test

import (
	"context"
	"errors"
	"testing"

	"github.com/flowplane-net/flowplane/internal/testutil"
	"github.com/flowplane-net/flowplane/pkg/device"
	"github.com/flowplane-net/flowplane/pkg/util"
)

func newTestClient(t *testing.T) *device.Client {
	t.Helper()
	testutil.SkipIfNoRedis(t)
	testutil.FlushTestRedis(t)

	client := device.NewClient(testutil.RedisAddr())
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestClientTableLifecycle(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	if err := client.AddEntry(ctx, "ipv4_lpm", "set_nhop",
		[]string{"10.0.2.0/24"}, []string{"00:00:02:00:00:02", "2"}); err != nil {
		t.Fatalf("AddEntry failed: %v", err)
	}
	if err := client.AddEntry(ctx, "ipv4_lpm", "set_ecmp_group",
		[]string{"10.0.6.0/24"}, []string{"1"}); err != nil {
		t.Fatalf("AddEntry failed: %v", err)
	}
	if err := client.AddEntry(ctx, "ecmp_nhop", "set_ecmp_nhop",
		[]string{"1", "0"}, []string{"00:00:02:00:00:02", "2"}); err != nil {
		t.Fatalf("AddEntry failed: %v", err)
	}

	// Clearing one table leaves the others alone.
	if err := client.ClearTable(ctx, "ipv4_lpm"); err != nil {
		t.Fatalf("ClearTable failed: %v", err)
	}
	if err := client.ClearTable(ctx, "ipv4_lpm"); err != nil {
		t.Errorf("clearing an empty table should succeed: %v", err)
	}

	// Re-adding after clear works.
	if err := client.AddEntry(ctx, "ipv4_lpm", "set_nhop",
		[]string{"10.0.2.0/24"}, []string{"00:00:02:00:00:02", "2"}); err != nil {
		t.Fatalf("AddEntry after clear failed: %v", err)
	}
}

func TestClientRegisterRoundTrip(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	if err := client.WriteRegister(ctx, "load_threshold", 0, 500000); err != nil {
		t.Fatalf("WriteRegister failed: %v", err)
	}
	val, err := client.ReadRegister(ctx, "load_threshold", 0)
	if err != nil {
		t.Fatalf("ReadRegister failed: %v", err)
	}
	if val != 500000 {
		t.Errorf("ReadRegister = %d, want 500000", val)
	}

	// Absent cells read as zero without error.
	val, err = client.ReadRegister(ctx, "byte_counter", 7)
	if err != nil {
		t.Fatalf("ReadRegister of absent cell failed: %v", err)
	}
	if val != 0 {
		t.Errorf("absent cell = %d, want 0", val)
	}

	if err := client.ResetRegister(ctx, "load_threshold"); err != nil {
		t.Fatalf("ResetRegister failed: %v", err)
	}
	val, _ = client.ReadRegister(ctx, "load_threshold", 0)
	if val != 0 {
		t.Errorf("after reset = %d, want 0", val)
	}
}

func TestClientMalformedRegisterReadsAsZeroWithError(t *testing.T) {
	client := newTestClient(t)
	testutil.SeedRegister(t, "byte_counter", "3", "not-a-number")

	val, err := client.ReadRegister(context.Background(), "byte_counter", 3)
	if val != 0 {
		t.Errorf("malformed value read as %d, want 0", val)
	}
	if err == nil {
		t.Fatal("malformed value should return an error")
	}
	if !errors.Is(err, util.ErrStaleReading) {
		t.Errorf("error = %v, want ErrStaleReading", err)
	}
}
