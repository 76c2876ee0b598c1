package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDescriptorsJSON(t *testing.T) {
	path := writeFile(t, "metrics.json", `[
		{"name": "CPUUtilization", "namespace": "AWS/EC2", "statistic": "Average",
		 "dimensions": {"InstanceId": "i-1"}},
		{"name": "NetworkIn", "namespace": "AWS/EC2", "stat": "Sum", "extended_stat": "p90", "period": 60}
	]`)
	descs, err := LoadDescriptors(path)
	require.NoError(t, err)
	require.Len(t, descs, 2)
	assert.Equal(t, "CPUUtilization", descs[0].Name)
	assert.Equal(t, map[string]string{"InstanceId": "i-1"}, descs[0].Dimensions)
	assert.Equal(t, "Sum", descs[1].Stat)
	assert.Equal(t, int32(60), descs[1].Period)

	descs[1].ApplyAliases()
	assert.Equal(t, "Sum", descs[1].Statistic)
	assert.Equal(t, "p90", descs[1].ExtendedStatistic)
}

func TestLoadDescriptorsYAML(t *testing.T) {
	path := writeFile(t, "metrics.yaml", `
- name: CPUUtilization
  namespace: AWS/EC2
  statistic: Average
  start_time: "h:12"
- name: TargetResponseTime
  namespace: AWS/ApplicationELB
  extended_statistic: p99
  dimensions:
    LoadBalancer: app/web/1
`)
	descs, err := LoadDescriptors(path)
	require.NoError(t, err)
	require.Len(t, descs, 2)
	assert.Equal(t, "h:12", descs[0].StartTime)
	assert.Equal(t, "p99", descs[1].ExtendedStatistic)
	assert.Equal(t, "app/web/1", descs[1].Dimensions["LoadBalancer"])
}

func TestLoadDescriptorsFailures(t *testing.T) {
	_, err := LoadDescriptors(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = LoadDescriptors(writeFile(t, "bad.json", `{"name": "not a list"}`))
	assert.Error(t, err)

	_, err = LoadDescriptors(writeFile(t, "bad.yml", "- name: [unclosed\n"))
	assert.Error(t, err)
}

func TestLoadDescriptorsRejectUnknownFields(t *testing.T) {
	var cases = []struct {
		file    string
		content string
	}{
		{"metrics.json", `[{"name": "CPUUtilization", "namespace": "AWS/EC2", "statistc": "Average"}]`},
		{"metrics.yml", "- name: CPUUtilization\n  namespace: AWS/EC2\n  statistc: Average\n"},
	}
	for _, c := range cases {
		_, err := LoadDescriptors(writeFile(t, c.file, c.content))
		assert.Error(t, err, c.file)
	}
}
