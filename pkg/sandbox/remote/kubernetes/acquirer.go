// Package kubernetes acquires chart sandboxes by creating agent-sandbox
// SandboxClaim resources and waiting for the controller to provision them.
package kubernetes

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	sandboxv1alpha1 "sigs.k8s.io/agent-sandbox/api/v1alpha1"
	extensionsv1alpha1 "sigs.k8s.io/agent-sandbox/extensions/api/v1alpha1"

	"github.com/figaro-dev/figaro/pkg/sandbox/remote"
)

var _ remote.Acquirer = (*ClaimAcquirer)(nil)

const (
	// pollInterval is how often the provisioned Sandbox is re-read while
	// waiting for its Ready condition.
	pollInterval = 500 * time.Millisecond

	// sandboxPort is the port the sandbox execution server listens on
	// inside the pod.
	sandboxPort = 8080
)

// ClaimAcquirer provisions one sandbox per chart execution. Acquire files a
// SandboxClaim against a template, blocks until the controller reports the
// backing Sandbox ready, and hands back its in-cluster URL. The release
// function deletes the claim, which tears the pod down.
type ClaimAcquirer struct {
	client    client.Client
	template  string
	namespace string
	timeout   time.Duration
}

// NewClaimAcquirer creates a ClaimAcquirer from configuration.
func NewClaimAcquirer(c client.Client, template, namespace string, timeout time.Duration) *ClaimAcquirer {
	return &ClaimAcquirer{
		client:    c,
		template:  template,
		namespace: namespace,
		timeout:   timeout,
	}
}

// NewScheme returns a runtime.Scheme that knows the agent-sandbox types.
func NewScheme() (*runtime.Scheme, error) {
	scheme := runtime.NewScheme()
	if err := sandboxv1alpha1.AddToScheme(scheme); err != nil {
		return nil, fmt.Errorf("register sandbox types: %w", err)
	}
	if err := extensionsv1alpha1.AddToScheme(scheme); err != nil {
		return nil, fmt.Errorf("register extensions types: %w", err)
	}
	return scheme, nil
}

// Acquire files a SandboxClaim and waits up to the configured timeout for
// the Sandbox to come up. On success it returns http://<serviceFQDN>:8080
// and a release func; on failure the claim is already cleaned up.
func (a *ClaimAcquirer) Acquire(ctx context.Context) (string, func(), error) {
	name := newClaimName()

	claim := &extensionsv1alpha1.SandboxClaim{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: a.namespace,
		},
		Spec: extensionsv1alpha1.SandboxClaimSpec{
			TemplateRef: extensionsv1alpha1.SandboxTemplateRef{
				Name: a.template,
			},
		},
	}
	if err := a.client.Create(ctx, claim); err != nil {
		return "", nil, fmt.Errorf("create SandboxClaim %q: %w", name, err)
	}
	slog.Debug("filed SandboxClaim", "name", name, "namespace", a.namespace, "template", a.template)

	fqdn, err := a.awaitSandbox(ctx, name)
	if err != nil {
		// Claim cleanup must not depend on the caller's context, which may
		// already be cancelled at this point.
		a.deleteClaim(context.Background(), name)
		return "", nil, err
	}

	url := fmt.Sprintf("http://%s:%d", fqdn, sandboxPort)
	release := func() {
		a.deleteClaim(context.Background(), name)
	}

	slog.Debug("sandbox ready", "name", name, "url", url)
	return url, release, nil
}

// awaitSandbox polls the Sandbox that backs the claim until it reports
// Ready with a populated serviceFQDN, the timeout elapses, or ctx is done.
func (a *ClaimAcquirer) awaitSandbox(ctx context.Context, name string) (string, error) {
	waitCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	key := types.NamespacedName{Name: name, Namespace: a.namespace}
	for {
		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return "", fmt.Errorf("wait for Sandbox %q: %w", name, ctx.Err())
			}
			return "", fmt.Errorf("Sandbox %q not ready after %s", name, a.timeout)
		case <-ticker.C:
			sb := &sandboxv1alpha1.Sandbox{}
			if err := a.client.Get(waitCtx, key, sb); err != nil {
				// The controller may not have created the Sandbox yet.
				slog.Debug("Sandbox not yet visible", "name", name, "error", err.Error())
				continue
			}
			// A Ready condition can flip before the FQDN lands in status,
			// so require both.
			if sandboxReady(sb) && sb.Status.ServiceFQDN != "" {
				return sb.Status.ServiceFQDN, nil
			}
		}
	}
}

// sandboxReady reports whether the Sandbox carries a Ready=True condition.
func sandboxReady(sb *sandboxv1alpha1.Sandbox) bool {
	return meta.IsStatusConditionTrue(sb.Status.Conditions, string(sandboxv1alpha1.SandboxConditionReady))
}

// deleteClaim removes a SandboxClaim. Failures are logged only; this runs
// from release funcs and error paths where there is nothing left to fail.
func (a *ClaimAcquirer) deleteClaim(ctx context.Context, name string) {
	claim := &extensionsv1alpha1.SandboxClaim{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: a.namespace,
		},
	}
	if err := a.client.Delete(ctx, claim); err != nil {
		slog.Warn("delete SandboxClaim failed", "name", name, "namespace", a.namespace, "error", err.Error())
		return
	}
	slog.Debug("deleted SandboxClaim", "name", name, "namespace", a.namespace)
}

// newClaimName produces a unique claim name. Package-level so tests can
// substitute deterministic names.
var newClaimName = func() string {
	return "figaro-exec-" + uuid.NewString()[:8]
}
