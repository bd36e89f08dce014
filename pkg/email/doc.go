// Package email abstracts outbound transactional mail behind the EmailSender
// interface with two implementations: a Postmark client for real delivery and
// a file-based sender for development, where messages land on disk instead of
// in inboxes.
package email
