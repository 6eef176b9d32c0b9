package tool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProjectKeyFromTransactionID(t *testing.T) {
	require.Equal(t, "PRJWXYZ", ProjectKeyFromTransactionID("abcdWXYZ"))
	require.Equal(t, "PRJCD34", ProjectKeyFromTransactionID("sess_AB12CD34"))
}

func TestChannelNameFromTransactionID(t *testing.T) {
	require.Equal(t, "prj-wxyz", ChannelNameFromTransactionID("abcdWXYZ"))
	require.Equal(t, "prj-cd34", ChannelNameFromTransactionID("sess_AB12CD34"))
}

func TestNamingShortIDsUseWholeID(t *testing.T) {
	require.Equal(t, "PRJAB1", ProjectKeyFromTransactionID("ab1"))
	require.Equal(t, "prj-ab1", ChannelNameFromTransactionID("AB1"))
}
