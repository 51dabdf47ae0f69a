// Copyright 2025 Advanced Micro Devices, Inc.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//       http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package observe

import (
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/runtime"

	"github.com/silogen/airm/apis/airm/v1alpha1"
)

// Reasons used when the classifier cannot determine a status.
const (
	ReasonUndetermined       = "Status information could not be determined"
	ReasonConfigUndetermined = "Config status could not be determined"
)

type classifyFunc func(res Resource, event EventType) (v1alpha1.ComponentStatus, string)

// classifiers dispatches on the resource kind. Adding a component kind means
// adding one entry here and one status-class entry in the resolver.
var classifiers = map[v1alpha1.ComponentKind]classifyFunc{
	v1alpha1.ComponentKindJob:          classifyJob,
	v1alpha1.ComponentKindDeployment:   classifyDeployment,
	v1alpha1.ComponentKindStatefulSet:  classifyStatefulSet,
	v1alpha1.ComponentKindDaemonSet:    classifyDaemonSet,
	v1alpha1.ComponentKindCronJob:      classifyCronJob,
	v1alpha1.ComponentKindPod:          classifyPod,
	v1alpha1.ComponentKindService:      classifyService,
	v1alpha1.ComponentKindConfigMap:    classifyConfigMap,
	v1alpha1.ComponentKindKaiwoJob:     classifyKaiwoJob,
	v1alpha1.ComponentKindKaiwoService: classifyKaiwoService,
	v1alpha1.ComponentKindAIMService:   classifyAIMService,
}

// Classify maps a resource's observed state and the watch event type to a
// canonical (status, reason) pair. Pure and deterministic; malformed or missing
// fields classify as undetermined rather than erroring.
func Classify(res Resource, event EventType) (v1alpha1.ComponentStatus, string) {
	fn, ok := classifiers[v1alpha1.ComponentKind(res.GetKind())]
	if !ok {
		return v1alpha1.ComponentStatusNone, ReasonUndetermined
	}
	return fn(res, event)
}

// DefaultReason fills in a reason when classification did not supply one.
func DefaultReason(status v1alpha1.ComponentStatus, reason string) string {
	if reason != "" {
		return reason
	}
	return fmt.Sprintf("Status: %s", status)
}

// GetStatusForJob classifies a batch Job from its status counts and the
// spec completions field (defaults to 1 when unset). Rules are evaluated top to
// bottom, first match wins.
func GetStatusForJob(status batchv1.JobStatus, completions *int32) (v1alpha1.ComponentStatus, string) {
	active := status.Active
	succeeded := status.Succeeded
	failed := status.Failed

	wantCompletions := int32(1)
	if completions != nil && *completions > 0 {
		wantCompletions = *completions
	}

	switch {
	case active == 0 && succeeded == 0 && failed == 0:
		return v1alpha1.JobStatusPending, "Job has not started yet."
	case active > 0:
		return v1alpha1.JobStatusRunning, "Job is actively running."
	case succeeded >= wantCompletions:
		return v1alpha1.JobStatusComplete, "Job has completed successfully."
	case failed > 0:
		return v1alpha1.JobStatusFailed, "Job has failed."
	}
	return v1alpha1.ComponentStatusNone, ReasonUndetermined
}

// GetStatusForDeployment classifies a Deployment from its replica counts.
func GetStatusForDeployment(status appsv1.DeploymentStatus) (v1alpha1.ComponentStatus, string) {
	switch {
	case status.ReadyReplicas == 0:
		return v1alpha1.ReplicaSetStatusPending, "No replicas are ready yet."
	case status.ReadyReplicas < status.Replicas:
		return v1alpha1.ReplicaSetStatusPending, fmt.Sprintf("Scaling up: %d ready of %d total", status.ReadyReplicas, status.Replicas)
	case status.ReadyReplicas == status.Replicas:
		return v1alpha1.ReplicaSetStatusRunning, "All replicas are running."
	}
	return v1alpha1.ComponentStatusNone, ReasonUndetermined
}

// GetStatusForStatefulSet classifies a StatefulSet from its replica counts.
func GetStatusForStatefulSet(status appsv1.StatefulSetStatus) (v1alpha1.ComponentStatus, string) {
	switch {
	case status.Replicas == 0:
		return v1alpha1.ReplicaSetStatusPending, "StatefulSet has no replicas defined."
	case status.CurrentReplicas < status.Replicas:
		return v1alpha1.ReplicaSetStatusPending, fmt.Sprintf("Scaling up: %d of %d replicas created", status.CurrentReplicas, status.Replicas)
	case status.ReadyReplicas == status.Replicas &&
		status.CurrentReplicas == status.Replicas &&
		status.AvailableReplicas == status.Replicas:
		return v1alpha1.ReplicaSetStatusRunning, "All replicas are running."
	case status.ReadyReplicas < status.Replicas && status.CurrentReplicas == status.Replicas:
		return v1alpha1.ReplicaSetStatusPending, fmt.Sprintf("Partially ready: %d ready of %d total", status.ReadyReplicas, status.Replicas)
	}
	return v1alpha1.ComponentStatusNone, ReasonUndetermined
}

// GetStatusForDaemonSet classifies a DaemonSet from its scheduling counts.
func GetStatusForDaemonSet(status appsv1.DaemonSetStatus) (v1alpha1.ComponentStatus, string) {
	desired := status.DesiredNumberScheduled
	switch {
	case status.CurrentNumberScheduled == 0:
		return v1alpha1.ReplicaSetStatusPending, "No pods have been scheduled yet."
	case status.NumberReady == desired:
		return v1alpha1.ReplicaSetStatusRunning, "All pods are running."
	case status.NumberReady < desired && status.CurrentNumberScheduled == desired:
		return v1alpha1.ReplicaSetStatusPending, fmt.Sprintf("Partially ready: %d ready of %d desired", status.NumberReady, desired)
	case status.CurrentNumberScheduled < desired:
		return v1alpha1.ReplicaSetStatusPending, fmt.Sprintf("Pods starting: %d scheduled of %d desired", status.CurrentNumberScheduled, desired)
	}
	return v1alpha1.ComponentStatusNone, ReasonUndetermined
}

// GetStatusForCronJob classifies a CronJob from its spec suspension and active
// job list.
func GetStatusForCronJob(spec batchv1.CronJobSpec, status batchv1.CronJobStatus) (v1alpha1.ComponentStatus, string) {
	switch {
	case spec.Suspend != nil && *spec.Suspend:
		return v1alpha1.CronJobStatusSuspended, "CronJob is suspended."
	case len(status.Active) > 0:
		return v1alpha1.CronJobStatusRunning, fmt.Sprintf("CronJob has %d active job(s).", len(status.Active))
	}
	return v1alpha1.CronJobStatusReady, "CronJob is scheduled, no jobs are currently active."
}

// GetStatusForPod maps a pod phase directly to a component status.
func GetStatusForPod(phase corev1.PodPhase) (v1alpha1.ComponentStatus, string) {
	switch phase {
	case corev1.PodPending:
		return v1alpha1.PodStatusPending, "Pod is pending."
	case corev1.PodRunning:
		return v1alpha1.PodStatusRunning, "Pod is running."
	case corev1.PodSucceeded:
		return v1alpha1.PodStatusComplete, "Pod has completed successfully."
	case corev1.PodFailed:
		return v1alpha1.PodStatusFailed, "Pod has failed."
	}
	return v1alpha1.ComponentStatusNone, ReasonUndetermined
}

// GetStatusForService classifies a Service. LoadBalancer services are ready
// once ingress has been provisioned; other types once a cluster IP exists.
func GetStatusForService(spec corev1.ServiceSpec, status corev1.ServiceStatus) (v1alpha1.ComponentStatus, string) {
	if spec.Type == corev1.ServiceTypeLoadBalancer {
		if len(status.LoadBalancer.Ingress) > 0 {
			return v1alpha1.ServiceStatusReady, "LoadBalancer ingress has been provisioned."
		}
		return v1alpha1.ServiceStatusPending, "Waiting for LoadBalancer ingress."
	}
	if spec.ClusterIP != "" {
		return v1alpha1.ServiceStatusReady, "Service has a cluster IP."
	}
	return v1alpha1.ServiceStatusPending, "Waiting for cluster IP assignment."
}

// GetStatusForConfigMap classifies a ConfigMap purely from the event type, as
// config maps carry no status of their own.
func GetStatusForConfigMap(event EventType) (v1alpha1.ComponentStatus, string) {
	if event == EventAdded {
		return v1alpha1.ConfigMapStatusAdded, "ConfigMap has been added."
	}
	return v1alpha1.ComponentStatusNone, ReasonConfigUndetermined
}

func classifyJob(res Resource, _ EventType) (v1alpha1.ComponentStatus, string) {
	var status batchv1.JobStatus
	if !decodeStatus(res, &status) {
		return v1alpha1.ComponentStatusNone, ReasonUndetermined
	}
	var completions *int32
	var spec batchv1.JobSpec
	if decodeSpec(res, &spec) {
		completions = spec.Completions
	}
	return GetStatusForJob(status, completions)
}

func classifyDeployment(res Resource, _ EventType) (v1alpha1.ComponentStatus, string) {
	var status appsv1.DeploymentStatus
	if !decodeStatus(res, &status) {
		return v1alpha1.ComponentStatusNone, ReasonUndetermined
	}
	return GetStatusForDeployment(status)
}

func classifyStatefulSet(res Resource, _ EventType) (v1alpha1.ComponentStatus, string) {
	var status appsv1.StatefulSetStatus
	if !decodeStatus(res, &status) {
		return v1alpha1.ComponentStatusNone, ReasonUndetermined
	}
	return GetStatusForStatefulSet(status)
}

func classifyDaemonSet(res Resource, _ EventType) (v1alpha1.ComponentStatus, string) {
	var status appsv1.DaemonSetStatus
	if !decodeStatus(res, &status) {
		return v1alpha1.ComponentStatusNone, ReasonUndetermined
	}
	return GetStatusForDaemonSet(status)
}

func classifyCronJob(res Resource, _ EventType) (v1alpha1.ComponentStatus, string) {
	var spec batchv1.CronJobSpec
	var status batchv1.CronJobStatus
	decodeSpec(res, &spec)
	decodeStatus(res, &status)
	return GetStatusForCronJob(spec, status)
}

func classifyPod(res Resource, _ EventType) (v1alpha1.ComponentStatus, string) {
	var status corev1.PodStatus
	if !decodeStatus(res, &status) {
		return v1alpha1.ComponentStatusNone, ReasonUndetermined
	}
	return GetStatusForPod(status.Phase)
}

func classifyService(res Resource, _ EventType) (v1alpha1.ComponentStatus, string) {
	var spec corev1.ServiceSpec
	var status corev1.ServiceStatus
	if !decodeSpec(res, &spec) {
		return v1alpha1.ComponentStatusNone, ReasonUndetermined
	}
	decodeStatus(res, &status)
	return GetStatusForService(spec, status)
}

func classifyConfigMap(_ Resource, event EventType) (v1alpha1.ComponentStatus, string) {
	return GetStatusForConfigMap(event)
}

func classifyKaiwoJob(res Resource, _ EventType) (v1alpha1.ComponentStatus, string) {
	return customResourceStatus(res, map[v1alpha1.ComponentStatus]struct{}{
		v1alpha1.KaiwoJobStatusNew:         {},
		v1alpha1.KaiwoJobStatusPending:     {},
		v1alpha1.KaiwoJobStatusStarting:    {},
		v1alpha1.KaiwoJobStatusRunning:     {},
		v1alpha1.KaiwoJobStatusComplete:    {},
		v1alpha1.KaiwoJobStatusFailed:      {},
		v1alpha1.KaiwoJobStatusDownloading: {},
		v1alpha1.KaiwoJobStatusTerminating: {},
		v1alpha1.KaiwoJobStatusTerminated:  {},
	})
}

func classifyKaiwoService(res Resource, _ EventType) (v1alpha1.ComponentStatus, string) {
	return customResourceStatus(res, map[v1alpha1.ComponentStatus]struct{}{
		v1alpha1.KaiwoServiceStatusNew:         {},
		v1alpha1.KaiwoServiceStatusPending:     {},
		v1alpha1.KaiwoServiceStatusStarting:    {},
		v1alpha1.KaiwoServiceStatusRunning:     {},
		v1alpha1.KaiwoServiceStatusFailed:      {},
		v1alpha1.KaiwoServiceStatusDownloading: {},
		v1alpha1.KaiwoServiceStatusTerminating: {},
		v1alpha1.KaiwoServiceStatusTerminated:  {},
	})
}

func classifyAIMService(res Resource, _ EventType) (v1alpha1.ComponentStatus, string) {
	return customResourceStatus(res, map[v1alpha1.ComponentStatus]struct{}{
		v1alpha1.AIMServiceStatusPending:  {},
		v1alpha1.AIMServiceStatusStarting: {},
		v1alpha1.AIMServiceStatusRunning:  {},
		v1alpha1.AIMServiceStatusFailed:   {},
		v1alpha1.AIMServiceStatusDegraded: {},
	})
}

// customResourceStatus reads the verbatim .status.status field of a custom
// resource and checks it against the kind's closed vocabulary.
func customResourceStatus(res Resource, vocabulary map[v1alpha1.ComponentStatus]struct{}) (v1alpha1.ComponentStatus, string) {
	statusFields, ok := res.GetStatusFields()
	if !ok {
		return v1alpha1.ComponentStatusNone, ReasonUndetermined
	}
	raw, ok := statusFields["status"].(string)
	if !ok || raw == "" {
		return v1alpha1.ComponentStatusNone, ReasonUndetermined
	}
	status := v1alpha1.ComponentStatus(raw)
	if _, known := vocabulary[status]; !known {
		return v1alpha1.ComponentStatusNone, ReasonUndetermined
	}
	return status, ""
}

func decodeStatus(res Resource, into interface{}) bool {
	fields, ok := res.GetStatusFields()
	if !ok {
		return false
	}
	return runtime.DefaultUnstructuredConverter.FromUnstructured(fields, into) == nil
}

func decodeSpec(res Resource, into interface{}) bool {
	fields, ok := res.GetSpecFields()
	if !ok {
		return false
	}
	return runtime.DefaultUnstructuredConverter.FromUnstructured(fields, into) == nil
}
