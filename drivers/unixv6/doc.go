// See layout.go for the on-disk format, superblock.go for mount/unmount/
// mkfs, inode.go for the inode layer, filev6.go for the sequential file
// reader, and dirent.go for the directory iterator and path resolver.
package unixv6
