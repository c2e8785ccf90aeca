// Package container detects whether the current process is running inside
// a container, so callers can change a default (like whether outbound GeoIP
// lookups are safe to attempt) based on the surrounding sandbox rather than
// requiring an explicit operator flag everywhere.
package container

import (
	"os"
	"strings"
)

// IsContainerised reports whether any of the usual container signals are
// present: a Docker env marker file, a container runtime named in PID 1's
// cgroup, or a Kubernetes-injected environment variable.
func IsContainerised() bool {
	if dockerEnvFilePresent() {
		return true
	}
	if cgroupNamesContainerRuntime() {
		return true
	}
	return runningUnderKubernetes()
}

func dockerEnvFilePresent() bool {
	_, err := os.Stat("/.dockerenv")
	return err == nil
}

var containerRuntimeMarkers = []string{"docker", "containerd", "kubepods"}

func cgroupNamesContainerRuntime() bool {
	raw, err := os.ReadFile("/proc/1/cgroup")
	if err != nil {
		return false
	}
	content := string(raw)
	for _, marker := range containerRuntimeMarkers {
		if strings.Contains(content, marker) {
			return true
		}
	}
	return false
}

func runningUnderKubernetes() bool {
	return os.Getenv("KUBERNETES_SERVICE_HOST") != ""
}
