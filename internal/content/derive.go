package content

import "photovault/internal/crypto"

// DeriveFolderKey deterministically derives a folder's key from its parent
// (a vault key or the master key). Never stored or transmitted: anyone
// holding the parent re-derives it from the folder ID alone.
func DeriveFolderKey(parentKey []byte, folderID string) ([]byte, error) {
	return crypto.DeriveSubKey(parentKey, crypto.SaltFolder, "folder:"+folderID)
}

// DeriveFileKey derives a file's key from its folder key. A recipient who
// was handed the folder key re-derives every file key under it without
// per-file share events.
func DeriveFileKey(folderKey []byte, fileID string) ([]byte, error) {
	return crypto.DeriveSubKey(folderKey, crypto.SaltFile, "file:"+fileID)
}
