package i18n

// Message ids of the embedded catalogs
const (
	KeySignedIn       = "auth_signed_in"
	KeySignedOut      = "auth_signed_out"
	KeyLoginFailed    = "auth_login_failed"
	KeySessionExpired = "auth_session_expired"

	KeySlotRegistered       = "slot_registered"
	KeySlotUnregistered     = "slot_unregistered"
	KeySlotRegisterFailed   = "slot_register_failed"
	KeySlotUnregisterFailed = "slot_unregister_failed"
	KeySlotNoAction         = "slot_no_action"

	KeySeasonsLoadFailed       = "seasons_load_failed"
	KeySectionsLoadFailed      = "sections_load_failed"
	KeyAvailabilityLoadFailed  = "availability_load_failed"
	KeyFacultyLoadFailed       = "faculty_load_failed"
	KeyFormsLoadFailed         = "forms_load_failed"
	KeyRegistrationsLoadFailed = "registrations_load_failed"
	KeyInvitationsLoadFailed   = "invitations_load_failed"
	KeyUsersLoadFailed         = "users_load_failed"

	KeyAvailabilityInvalid      = "availability_invalid"
	KeyAvailabilitySubmitted    = "availability_submitted"
	KeyAvailabilitySubmitFailed = "availability_submit_failed"
	KeyAvailabilityDeleted      = "availability_deleted"
	KeyAvailabilityDeleteFailed = "availability_delete_failed"
	KeyAvailabilityImported     = "availability_imported"
	KeyAvailabilityImportFailed = "availability_import_failed"

	KeyUserRegistered     = "user_registered"
	KeyUserRegisterFailed = "user_register_failed"
	KeyRoleChanged        = "role_changed"
	KeyRoleChangeFailed   = "role_change_failed"
	KeyUserDeleted        = "user_deleted"
	KeyUserDeleteFailed   = "user_delete_failed"

	KeyFormSubmitted    = "form_submitted"
	KeyFormSubmitFailed = "form_submit_failed"
	KeyFormInvalid      = "form_invalid"
	KeyFormLinkSent     = "form_link_sent"
	KeyFormLinkFailed   = "form_link_failed"

	KeyFacultyInvited = "faculty_invited"
	KeyInviteFailed   = "invite_failed"

	KeySetupRoomSaved      = "setup_room_saved"
	KeySetupCandidateSaved = "setup_candidate_saved"
	KeySetupFailed         = "setup_failed"

	KeyTimeSlotCreated      = "timeslot_created"
	KeyTimeSlotCreateFailed = "timeslot_create_failed"

	KeyExportEmailed     = "export_emailed"
	KeyExportEmailFailed = "export_email_failed"
	KeyExportGDocFailed  = "export_gdoc_failed"

	KeyS3OK     = "s3_ok"
	KeyS3Failed = "s3_failed"

	KeyValidationFailed = "validation_failed"
)
