package kubernetes

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"superset-embed/internal/features/superset/domain"
)

// SecretStore implements domain.ParameterStore on top of one Kubernetes secret
type SecretStore struct {
	client     kubernetes.Interface
	namespace  string
	secretName string
}

// NewSecretStore creates a new Kubernetes secret backed parameter store
func NewSecretStore(clientset kubernetes.Interface, namespace, secretName string) domain.ParameterStore {
	if clientset == nil {
		panic("kubernetes client cannot be nil")
	}

	return &SecretStore{
		client:     clientset,
		namespace:  namespace,
		secretName: secretName,
	}
}

// GetParams retrieves specified keys from the secret.
// A missing secret is reported as an empty result so an unconfigured system validates normally.
func (s *SecretStore) GetParams(ctx context.Context, keys []string) (map[string]string, error) {
	if s.secretName == "" {
		return nil, fmt.Errorf("secret name cannot be empty")
	}

	secret, err := s.client.CoreV1().Secrets(s.namespace).Get(ctx, s.secretName, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve secret %s: %w", s.secretName, err)
	}

	selectedData := make(map[string]string)
	for _, key := range keys {
		if value, exists := secret.Data[key]; exists {
			selectedData[key] = string(value)
		} else if value, exists := secret.StringData[key]; exists {
			selectedData[key] = value
		}
	}

	return selectedData, nil
}

// SetParams writes the given keys into the secret, creating it when absent
func (s *SecretStore) SetParams(ctx context.Context, values map[string]string) error {
	if s.secretName == "" {
		return fmt.Errorf("secret name cannot be empty")
	}

	secrets := s.client.CoreV1().Secrets(s.namespace)
	secret, err := secrets.Get(ctx, s.secretName, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		secret = &corev1.Secret{
			ObjectMeta: metav1.ObjectMeta{
				Name:      s.secretName,
				Namespace: s.namespace,
				Labels:    map[string]string{"app.kubernetes.io/managed-by": "superset-embed"},
			},
			Type: corev1.SecretTypeOpaque,
			Data: encode(values),
		}
		if _, err := secrets.Create(ctx, secret, metav1.CreateOptions{}); err != nil {
			return fmt.Errorf("failed to create secret %s: %w", s.secretName, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to retrieve secret %s: %w", s.secretName, err)
	}

	updated := secret.DeepCopy()
	if updated.Data == nil {
		updated.Data = make(map[string][]byte, len(values))
	}
	for k, v := range encode(values) {
		updated.Data[k] = v
	}

	if _, err := secrets.Update(ctx, updated, metav1.UpdateOptions{}); err != nil {
		return fmt.Errorf("failed to update secret %s: %w", s.secretName, err)
	}
	return nil
}

func encode(values map[string]string) map[string][]byte {
	data := make(map[string][]byte, len(values))
	for k, v := range values {
		data[k] = []byte(v)
	}
	return data
}
