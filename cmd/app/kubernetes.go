package app

import (
	"fmt"
	"os"
	"path/filepath"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"
)

// NewKubeClient returns a clientset for the kubernetes settings store.
// It first tries to use a kubeconfig file, then falls back to in-cluster configuration.
func NewKubeClient(cfg *KubernetesConfig) (kubernetes.Interface, error) {
	config, err := getKubeConfig(cfg)
	if err != nil {
		return nil, err
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}

	return clientset, nil
}

// getKubeConfig returns the kubernetes REST configuration
func getKubeConfig(cfg *KubernetesConfig) (*rest.Config, error) {
	kubeconfig := determineKubeconfigPath(cfg.ConfigPath)

	if shouldUseInClusterConfig(kubeconfig) {
		config, err := rest.InClusterConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to create in-cluster configs: %w", err)
		}
		return config, nil
	}

	config, err := clientcmd.BuildConfigFromFlags(cfg.MasterURL, kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to build configs from kubeconfig %s: %w", kubeconfig, err)
	}
	return config, nil
}

// determineKubeconfigPath finds the kubeconfig file path
func determineKubeconfigPath(configPath string) string {
	if configPath != "" {
		return configPath
	}

	if path := os.Getenv("KUBECONFIG"); path != "" {
		return path
	}

	if home := homedir.HomeDir(); home != "" {
		return filepath.Join(home, ".kube", "config")
	}

	return ""
}

// shouldUseInClusterConfig reports whether no usable kubeconfig file exists
func shouldUseInClusterConfig(kubeconfig string) bool {
	if kubeconfig == "" {
		return true
	}

	_, err := os.Stat(kubeconfig)
	return err != nil
}
