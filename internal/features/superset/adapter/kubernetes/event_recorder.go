package kubernetes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"superset-embed/internal/common"
	"superset-embed/internal/features/superset/domain"
)

// EventRecorderConfig holds the configuration for the event recorder
type EventRecorderConfig struct {
	Namespace  string
	SecretName string
	Component  string

	// MaxElapsedTime bounds the retries of one event
	MaxElapsedTime  time.Duration
	InitialInterval time.Duration
}

// DefaultEventRecorderConfig returns the default event recorder configuration
func DefaultEventRecorderConfig() EventRecorderConfig {
	return EventRecorderConfig{
		Component:       "superset-embed",
		MaxElapsedTime:  15 * time.Second,
		InitialInterval: 500 * time.Millisecond,
	}
}

// EventRecorder implements domain.EventRecorder with core/v1 events attached to the settings secret
type EventRecorder struct {
	client kubernetes.Interface
	config EventRecorderConfig
	now    func() time.Time
}

// NewEventRecorder creates a new Kubernetes event recorder
func NewEventRecorder(clientset kubernetes.Interface, config EventRecorderConfig) domain.EventRecorder {
	if clientset == nil {
		panic("kubernetes client cannot be nil")
	}
	if config.Component == "" {
		config.Component = DefaultEventRecorderConfig().Component
	}

	return &EventRecorder{
		client: clientset,
		config: config,
		now:    time.Now,
	}
}

// Record creates one event, retrying transient API failures with exponential backoff
func (r *EventRecorder) Record(ctx context.Context, eventType, reason, message string) error {
	if ctx.Err() != nil {
		return fmt.Errorf("context canceled before recording event: %w", ctx.Err())
	}
	if eventType != domain.EventNormal && eventType != domain.EventWarning {
		return fmt.Errorf("unsupported event type %q", eventType)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.config.InitialInterval
	b.MaxElapsedTime = r.config.MaxElapsedTime

	operation := func() error {
		event := r.newEvent(ctx, eventType, reason, message)
		_, err := r.client.CoreV1().Events(r.config.Namespace).Create(ctx, event, metav1.CreateOptions{})
		if apierrors.IsForbidden(err) || apierrors.IsInvalid(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return fmt.Errorf("failed to record event %s: %w", reason, err)
	}

	common.LoggerFromContext(ctx).Debug("recorded kubernetes event",
		"type", eventType,
		"reason", reason,
		"secret", r.config.SecretName)
	return nil
}

// newEvent builds an event; the secret reference is linked by UID when the secret exists
func (r *EventRecorder) newEvent(ctx context.Context, eventType, reason, message string) *corev1.Event {
	now := metav1.NewTime(r.now())
	involved := corev1.ObjectReference{
		APIVersion: "v1",
		Kind:       "Secret",
		Namespace:  r.config.Namespace,
		Name:       r.config.SecretName,
	}

	secret, err := r.client.CoreV1().Secrets(r.config.Namespace).Get(ctx, r.config.SecretName, metav1.GetOptions{})
	if err == nil {
		involved.UID = secret.UID
		involved.ResourceVersion = secret.ResourceVersion
	}

	return &corev1.Event{
		ObjectMeta: metav1.ObjectMeta{
			Name:      fmt.Sprintf("%s.%x", r.config.SecretName, now.UnixNano()),
			Namespace: r.config.Namespace,
		},
		InvolvedObject: involved,
		Reason:         reason,
		Message:        strings.TrimSpace(message),
		Type:           eventType,
		FirstTimestamp: now,
		LastTimestamp:  now,
		Count:          1,
		Source: corev1.EventSource{
			Component: r.config.Component,
		},
	}
}
