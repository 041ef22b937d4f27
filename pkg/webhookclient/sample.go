package webhookclient

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	cdeventsapi "github.com/cdevents/sdk-go/pkg/api"
	cdeventsv05 "github.com/cdevents/sdk-go/pkg/api/v05"
)

// CloudEventsContentType marks a structured-mode CloudEvent body.
const CloudEventsContentType = "application/cloudevents+json"

// Payload is a ready-to-send delivery body.
type Payload struct {
	Body        []byte
	ContentType string
	EventType   string
}

// SampleKinds lists the kinds SamplePayload understands.
var SampleKinds = []string{"service.deployed", "service.upgraded", "service.rolledback", "service.removed", "service.published"}

// SamplePayload builds a CDEvent for a service in an environment, rendered as a structured CloudEvent.
func SamplePayload(kind, service, environment string) (Payload, error) {
	service = strings.TrimSpace(service)
	environment = strings.TrimSpace(environment)
	if service == "" || environment == "" {
		return Payload{}, fmt.Errorf("service and environment are required")
	}

	event, err := newServiceEvent(normalizeKind(kind), service, environment)
	if err != nil {
		return Payload{}, err
	}
	event.SetSource("hooksig/webhookgenerator")
	event.SetTimestamp(time.Now().UTC())
	event.SetSubjectId("service/" + service)

	ce, err := cdeventsapi.AsCloudEvent(event)
	if err != nil {
		return Payload{}, fmt.Errorf("render cloudevent: %w", err)
	}
	body, err := json.Marshal(ce)
	if err != nil {
		return Payload{}, fmt.Errorf("encode cloudevent: %w", err)
	}
	return Payload{
		Body:        body,
		ContentType: CloudEventsContentType,
		EventType:   event.GetType().String(),
	}, nil
}

func newServiceEvent(kind, service, environment string) (cdeventsapi.CDEventV04, error) {
	artifact := fmt.Sprintf("pkg:generic/%s@%d", service, time.Now().Unix())
	env := &cdeventsapi.Reference{Id: environment}

	switch kind {
	case "service.deployed":
		e, err := cdeventsv05.NewServiceDeployedEvent()
		if err != nil {
			return nil, err
		}
		e.SetSubjectEnvironment(env)
		e.SetSubjectArtifactId(artifact)
		return e, nil
	case "service.upgraded":
		e, err := cdeventsv05.NewServiceUpgradedEvent()
		if err != nil {
			return nil, err
		}
		e.SetSubjectEnvironment(env)
		e.SetSubjectArtifactId(artifact)
		return e, nil
	case "service.rolledback":
		e, err := cdeventsv05.NewServiceRolledbackEvent()
		if err != nil {
			return nil, err
		}
		e.SetSubjectEnvironment(env)
		e.SetSubjectArtifactId(artifact)
		return e, nil
	case "service.removed":
		e, err := cdeventsv05.NewServiceRemovedEvent()
		if err != nil {
			return nil, err
		}
		e.SetSubjectEnvironment(env)
		return e, nil
	case "service.published":
		e, err := cdeventsv05.NewServicePublishedEvent()
		if err != nil {
			return nil, err
		}
		e.SetSubjectEnvironment(env)
		return e, nil
	default:
		return nil, fmt.Errorf("unsupported sample kind %q", kind)
	}
}

func normalizeKind(kind string) string {
	kind = strings.ToLower(strings.TrimSpace(kind))
	kind = strings.TrimPrefix(kind, "dev.cdevents.")
	if kind == "" {
		return "service.deployed"
	}
	return kind
}
