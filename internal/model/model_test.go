package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindRequest, KindOf("RequestData"))
	assert.Equal(t, KindRemoteDependency, KindOf("RemoteDependencyData"))
	assert.Equal(t, KindPerformanceCounter, KindOf("PerformanceCounterData"))
	assert.Equal(t, KindUnknown, KindOf("requestdata"))
	assert.Equal(t, KindUnknown, KindOf(""))
}

func TestKindForMatchesPayload(t *testing.T) {
	assert.Equal(t, KindRequest, KindFor[RequestData]())
	assert.Equal(t, KindMessage, KindFor[MessageData]())
	assert.Equal(t, KindUnknown, KindFor[UnknownData]())
	assert.Equal(t, "remote-dependency", KindFor[RemoteDependencyData]().String())
	assert.Equal(t, "unknown", Kind(200).String())
}

func TestTag(t *testing.T) {
	e := &Envelope{Tags: map[string]string{TagCloudRole: "api"}}

	v, ok := e.Tag(TagCloudRole)
	require.True(t, ok)
	assert.Equal(t, "api", v)

	_, ok = e.Tag(TagUserID)
	assert.False(t, ok)

	var nilEnv *Envelope
	_, ok = nilEnv.Tag(TagCloudRole)
	assert.False(t, ok)
}

func TestItemOf(t *testing.T) {
	e := &Envelope{Name: "e", Kind: KindEvent, Data: EventData{Name: "clicked"}}

	it, ok := ItemOf[EventData](e)
	require.True(t, ok)
	assert.Equal(t, "clicked", it.Data.Name)
	assert.Equal(t, "e", it.Name)

	_, ok = ItemOf[RequestData](e)
	assert.False(t, ok)
}

func TestDecodeData(t *testing.T) {
	d, err := DecodeData(KindMetric, "MetricData", []byte(`{"metrics":[{"name":"cpu","value":0.5}]}`))
	require.NoError(t, err)
	m := d.(MetricData)
	require.Len(t, m.Metrics, 1)
	assert.Equal(t, "cpu", m.Metrics[0].Name)

	d, err = DecodeData(KindException, "ExceptionData", nil)
	require.NoError(t, err)
	assert.Equal(t, KindException, d.Kind())

	_, err = DecodeData(KindEvent, "EventData", []byte(`{"name":`))
	assert.Error(t, err)
}
