package ganeti_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nitinprakash96/ganeti-webmgr/pkg/ganeti"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/ganeti/ganetitest"
)

func TestParseInstance_Hypervisors(t *testing.T) {
	tests := []struct {
		doc        string
		hypervisor string
		status     ganeti.InstanceStatus
		nicParams  bool
	}{
		{ganetitest.Instance, ganeti.HypervisorKVM, ganeti.StatusRunning, false},
		{ganetitest.XenHVMInstance, ganeti.HypervisorXenHVM, ganeti.StatusAdminDown, true},
		{ganetitest.XenPVMInstance, ganeti.HypervisorXenPVM, ganeti.StatusAdminDown, true},
	}
	for _, tt := range tests {
		rec, err := ganeti.ParseInstance([]byte(tt.doc))
		require.NoError(t, err)
		assert.Equal(t, tt.hypervisor, rec.Hypervisor, rec.Name)
		assert.Equal(t, tt.status, rec.Status, rec.Name)
		assert.Equal(t, tt.nicParams, rec.NICParams != nil, rec.Name)
		assert.NoError(t, rec.Validate())
	}
}

func TestParseInstance_KeepsParamsVerbatim(t *testing.T) {
	rec, err := ganeti.ParseInstance([]byte(ganetitest.Instance))
	require.NoError(t, err)

	assert.Len(t, rec.HVParams, 25)
	assert.Equal(t, "", rec.HVParams["kvm_flag"])
	assert.Equal(t, false, rec.HVParams["vhost_net"])
	assert.Equal(t, float64(30), rec.HVParams["migration_downtime"])
	assert.Equal(t, ganeti.Int(512), rec.Memory)
	assert.Equal(t, ganeti.Int(2), rec.VCPUs)

	assert.Equal(t, "disk", rec.Summary.BootOrder)
	assert.Equal(t, "/root/bzImage", rec.Summary.KernelPath)
	assert.True(t, rec.Summary.SerialConsole)

	require.Len(t, rec.NICs, 1)
	assert.Equal(t, "aa:00:00:c5:47:2e", rec.NICs[0].MAC)
	assert.Nil(t, rec.NICs[0].IP)
	assert.Equal(t, "br42", rec.NICs[0].Link)

	hvm, err := ganeti.ParseInstance([]byte(ganetitest.XenHVMInstance))
	require.NoError(t, err)
	assert.Equal(t, "rtl8139", hvm.CustomHVParams["nic_type"])
	assert.Equal(t, []map[string]interface{}{{"link": "br42", "mode": "bridged"}}, hvm.NICParams)
	assert.Equal(t, ganeti.Int(11003), hvm.NetworkPort)
	assert.False(t, hvm.OperRAM.Known)
}

func TestInstanceRecord_Validate(t *testing.T) {
	tests := []struct {
		template string
		snodes   []string
		ok       bool
	}{
		{"drbd", []string{"n2"}, true},
		{"drbd", []string{}, false},
		{"plain", []string{}, true},
		{"plain", []string{"n2"}, false},
		{"diskless", nil, true},
		{"rbd", []string{"n3"}, false},
	}
	for _, tt := range tests {
		rec := ganeti.InstanceRecord{Name: "vm1", DiskTemplate: tt.template, SecondaryNodes: tt.snodes}
		err := rec.Validate()
		if tt.ok {
			assert.NoError(t, err, tt.template)
		} else {
			assert.ErrorIs(t, err, ganeti.ErrInvalidRecord, tt.template)
		}
	}
}

func TestDetectHypervisor_Fallback(t *testing.T) {
	rec := ganeti.InstanceRecord{HVParams: map[string]interface{}{"boot_order": "disk"}}
	rec.Hypervisor = ganeti.DetectHypervisor(rec.HVParams)
	assert.Equal(t, "", rec.Hypervisor)
	rec.WithDefaultHypervisor(ganeti.HypervisorKVM)
	assert.Equal(t, ganeti.HypervisorKVM, rec.Hypervisor)
	rec.WithDefaultHypervisor(ganeti.HypervisorXenPVM)
	assert.Equal(t, ganeti.HypervisorKVM, rec.Hypervisor)
}

func TestFakeClient_ResponseMap(t *testing.T) {
	fake := ganetitest.NewFakeClient()
	ctx := context.Background()

	plain, err := fake.ListNodes(ctx, false)
	require.NoError(t, err)
	assert.Len(t, plain.Names, 3)
	assert.Nil(t, plain.Records)

	bulk, err := fake.ListNodes(ctx, true)
	require.NoError(t, err)
	assert.Len(t, bulk.Records, 3)

	m := ganetitest.NodesMap()
	for _, call := range []struct {
		args   []interface{}
		kwargs map[string]interface{}
		want   string
	}{
		{nil, nil, ganetitest.Nodes},
		{[]interface{}{false}, nil, ganetitest.Nodes},
		{nil, map[string]interface{}{"bulk": false}, ganetitest.Nodes},
		{[]interface{}{true}, nil, ganetitest.NodesBulk},
		{nil, map[string]interface{}{"bulk": true}, ganetitest.NodesBulk},
	} {
		got, err := m.Lookup(call.args, call.kwargs)
		require.NoError(t, err)
		assert.Equal(t, call.want, got)
	}
	_, err = m.Lookup([]interface{}{true}, map[string]interface{}{"bulk": true})
	assert.ErrorIs(t, err, ganetitest.ErrNoResponse)
}
